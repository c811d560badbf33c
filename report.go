package sonar

// Authorizer decides whether the current caller may see compile error
// detail. Non-privileged callers get no error text at all; the host
// framework's permission check plugs in here.
type Authorizer interface {
	CanViewErrors() bool
}

// AuthorizerFunc adapts a function to the Authorizer interface.
type AuthorizerFunc func() bool

// CanViewErrors implements Authorizer.
func (f AuthorizerFunc) CanViewErrors() bool { return f() }

// Notifier delivers a transient operator-facing notice, typically surfaced
// in the host framework's admin UI.
type Notifier interface {
	Notify(message string)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(message string) { f(message) }

type denyAll struct{}

func (denyAll) CanViewErrors() bool { return false }

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}

// report logs a pipeline failure and surfaces the detail to the caller
// only when the authorizer allows it.
func (p *Pipeline) report(err error) {
	p.log.WithError(err).Error("stylesheet compile failed")
	if p.authz.CanViewErrors() {
		p.notifier.Notify(err.Error())
	}
}
