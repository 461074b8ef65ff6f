package coworkers

// AckOpts are the options of an ack intent.
type AckOpts struct {
	// AllUpTo acks every outstanding delivery up to and including this one.
	AllUpTo bool
}

// NackOpts are the options of a nack intent.
type NackOpts struct {
	// AllUpTo nacks every outstanding delivery up to and including this one.
	AllUpTo bool
	// Requeue asks the broker to redeliver the nacked deliveries.
	Requeue bool
}

// AckAllOpts are the options of an ackAll intent. There are none.
type AckAllOpts struct{}

// NackAllOpts are the options of a nackAll intent.
type NackAllOpts struct {
	// Requeue asks the broker to redeliver the nacked deliveries.
	Requeue bool
}

// ackKind tags the active ack intent.
type ackKind int

const (
	ackKindNone ackKind = iota
	ackKindAck
	ackKindNack
	ackKindAckAll
	ackKindNackAll
	// ackKindPoisoned is terminal.
	ackKindPoisoned
)

// String implements fmt.Stringer.
func (kind ackKind) String() string {
	switch kind {
	case ackKindAck:
		return "ack"
	case ackKindNack:
		return "nack"
	case ackKindAckAll:
		return "ackAll"
	case ackKindNackAll:
		return "nackAll"
	case ackKindPoisoned:
		return "errored"
	default:
		return "unset"
	}
}

// ackIntent is the single slot behind the four ack intent accessors. opts holds the
// options value matching kind.
type ackIntent struct {
	kind ackKind
	opts interface{}
}

// get returns the options of kind, or nil if kind is not the active intent.
func (intent *ackIntent) get(kind ackKind) (interface{}, error) {
	if intent.kind == ackKindPoisoned {
		return nil, ErrAckUnavailable{Method: kind.String()}
	}
	if intent.kind != kind {
		return nil, nil
	}
	return intent.opts, nil
}

// set makes kind the active intent, or clears the slot if opts is nil.
func (intent *ackIntent) set(kind ackKind, opts interface{}) error {
	if intent.kind == ackKindPoisoned {
		return ErrAckUnavailable{Method: kind.String()}
	}
	if opts == nil {
		*intent = ackIntent{}
		return nil
	}
	*intent = ackIntent{kind: kind, opts: opts}
	return nil
}

// Ack returns the ack intent, or nil if ack is not the active intent.
func (ctx *Context) Ack() (*AckOpts, error) {
	opts, err := ctx.intent.get(ackKindAck)
	if opts == nil {
		return nil, err
	}
	value := opts.(AckOpts)
	return &value, nil
}

// SetAck makes ack the active intent, clearing any other. A nil opts clears the
// intent.
func (ctx *Context) SetAck(opts *AckOpts) error {
	if opts == nil {
		return ctx.intent.set(ackKindAck, nil)
	}
	return ctx.intent.set(ackKindAck, *opts)
}

// Nack returns the nack intent, or nil if nack is not the active intent.
func (ctx *Context) Nack() (*NackOpts, error) {
	opts, err := ctx.intent.get(ackKindNack)
	if opts == nil {
		return nil, err
	}
	value := opts.(NackOpts)
	return &value, nil
}

// SetNack makes nack the active intent, clearing any other. A nil opts clears the
// intent.
func (ctx *Context) SetNack(opts *NackOpts) error {
	if opts == nil {
		return ctx.intent.set(ackKindNack, nil)
	}
	return ctx.intent.set(ackKindNack, *opts)
}

// AckAll returns the ackAll intent, or nil if ackAll is not the active intent.
func (ctx *Context) AckAll() (*AckAllOpts, error) {
	opts, err := ctx.intent.get(ackKindAckAll)
	if opts == nil {
		return nil, err
	}
	value := opts.(AckAllOpts)
	return &value, nil
}

// SetAckAll makes ackAll the active intent when enabled, clearing any other. When not
// enabled the intent is cleared.
func (ctx *Context) SetAckAll(enabled bool) error {
	if !enabled {
		return ctx.intent.set(ackKindAckAll, nil)
	}
	return ctx.intent.set(ackKindAckAll, AckAllOpts{})
}

// NackAll returns the nackAll intent, or nil if nackAll is not the active intent.
func (ctx *Context) NackAll() (*NackAllOpts, error) {
	opts, err := ctx.intent.get(ackKindNackAll)
	if opts == nil {
		return nil, err
	}
	value := opts.(NackAllOpts)
	return &value, nil
}

// SetNackAll makes nackAll the active intent, clearing any other. A nil opts clears
// the intent.
func (ctx *Context) SetNackAll(opts *NackAllOpts) error {
	if opts == nil {
		return ctx.intent.set(ackKindNackAll, nil)
	}
	return ctx.intent.set(ackKindNackAll, *opts)
}

// Errored returns true once OnError has taken over acknowledgement of the message.
func (ctx *Context) Errored() bool {
	return ctx.intent.kind == ackKindPoisoned
}
