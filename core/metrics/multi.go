package metrics

// MultiSink fans out events to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRun forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRun(ev RunEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRun(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordBatch forwards batch summaries to the sinks supporting them.
func (m *MultiSink) RecordBatch(ev BatchEvent) error {
	for _, s := range m.Sinks {
		if br, ok := s.(BatchRecorder); ok {
			if err := br.RecordBatch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
