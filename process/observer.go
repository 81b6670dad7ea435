package process

// Observer receives notifications for a single run.
//
// OnCreated is called before any line; OnTerminated after every line.
// OnOutput and OnError run on separate goroutines and may overlap each other,
// but each is called sequentially and in order for its own stream.
// Callbacks block the stream they serve, so slow observers slow the child
// once the pipe buffer fills.
type Observer interface {
	OnCreated(Created)
	OnOutput(Line)
	OnError(Line)
	OnTerminated(Termination)
}

// WaitFailure describes a started child whose exit status could not be
// collected. No OnTerminated follows it.
type WaitFailure struct {
	RunID string
	PID   int
	Err   error
}

// WaitFailureObserver is an optional extension of Observer for observers
// that track started children and must learn when a run ends without a
// Termination.
type WaitFailureObserver interface {
	OnWaitFailed(WaitFailure)
}

func notifyWaitFailed(o Observer, f WaitFailure) {
	if w, ok := o.(WaitFailureObserver); ok {
		w.OnWaitFailed(f)
	}
}

// ObserverFuncs adapts optional functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Created    func(Created)
	Output     func(Line)
	Error      func(Line)
	Terminated func(Termination)
	WaitFailed func(WaitFailure)
}

func (f ObserverFuncs) OnCreated(c Created) {
	if f.Created != nil {
		f.Created(c)
	}
}

func (f ObserverFuncs) OnOutput(l Line) {
	if f.Output != nil {
		f.Output(l)
	}
}

func (f ObserverFuncs) OnError(l Line) {
	if f.Error != nil {
		f.Error(l)
	}
}

func (f ObserverFuncs) OnTerminated(t Termination) {
	if f.Terminated != nil {
		f.Terminated(t)
	}
}

func (f ObserverFuncs) OnWaitFailed(w WaitFailure) {
	if f.WaitFailed != nil {
		f.WaitFailed(w)
	}
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) OnCreated(Created) {}
func (NopObserver) OnOutput(Line) {}
func (NopObserver) OnError(Line) {}
func (NopObserver) OnTerminated(Termination) {}

// multiObserver fans notifications out in registration order.
type multiObserver []Observer

// Observers combines observers into one. Nil entries are dropped.
func Observers(obs ...Observer) Observer {
	out := make(multiObserver, 0, len(obs))
	for _, o := range obs {
		switch v := o.(type) {
		case nil:
		case multiObserver:
			out = append(out, v...)
		default:
			out = append(out, o)
		}
	}
	switch len(out) {
	case 0:
		return NopObserver{}
	case 1:
		return out[0]
	}
	return out
}

func (m multiObserver) OnCreated(c Created) {
	for _, o := range m {
		o.OnCreated(c)
	}
}

func (m multiObserver) OnOutput(l Line) {
	for _, o := range m {
		o.OnOutput(l)
	}
}

func (m multiObserver) OnError(l Line) {
	for _, o := range m {
		o.OnError(l)
	}
}

func (m multiObserver) OnTerminated(t Termination) {
	for _, o := range m {
		o.OnTerminated(t)
	}
}

func (m multiObserver) OnWaitFailed(f WaitFailure) {
	for _, o := range m {
		notifyWaitFailed(o, f)
	}
}
