package recorder

// NoopRecorder is used when history recording is disabled.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordLedger(_ *LedgerEvent) error { return nil }
func (n *NoopRecorder) RecordUnlock(_ *UnlockEvent) error { return nil }
func (n *NoopRecorder) RecordClaim(_ *ClaimEvent) error   { return nil }
func (n *NoopRecorder) RecordBoost(_ *BoostEvent) error   { return nil }
func (n *NoopRecorder) RecordSystem(_ *SystemEvent) error { return nil }
func (n *NoopRecorder) Close() error                      { return nil }
