package ports

// Metrics records application-level outcomes. Implementations must be safe
// for concurrent use.
type Metrics interface {
	CommandHandled(command string, err error)
	EventPublished(eventType string, err error)
	EventHandled(eventType string, err error)
	ProjectionCacheFailed(eventType string)
	CachedEntities(kind string, count int)
	Reconciled(kind, outcome string)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) CommandHandled(string, error) {}
func (NopMetrics) EventPublished(string, error) {}
func (NopMetrics) EventHandled(string, error)   {}
func (NopMetrics) ProjectionCacheFailed(string) {}
func (NopMetrics) CachedEntities(string, int)   {}
func (NopMetrics) Reconciled(string, string)    {}
