package coworkers

// HandlerFunc handles the Context of one message. Returning an error sends the
// message down the error path: see Context.OnError.
type HandlerFunc func(ctx *Context) error

// Middleware wraps a HandlerFunc. Middleware may set the ack intent of the Context
// before or after calling next.
type Middleware func(next HandlerFunc) HandlerFunc

// ProviderTypeID identifies a ProvidesMiddleware type for catching duplicate providers.
type ProviderTypeID string

// ProvidesMiddleware is the base interface that must be implemented by any middleware
// provider.
type ProvidesMiddleware interface {
	// TypeID returns a unique ID for verifying that a provider has not been registered
	// more than once.
	TypeID() ProviderTypeID
}

// ProvidesDelivery provides delivery Middleware as a method.
type ProvidesDelivery interface {
	ProvidesMiddleware
	Delivery(next HandlerFunc) HandlerFunc
}

// middlewareRegistry holds the middleware registered on an Application.
type middlewareRegistry struct {
	// delivery is all Middleware to wrap each queue handler in, outermost first.
	delivery []Middleware
	// providers tracks the type IDs of providers passed to this registry.
	providers map[ProviderTypeID]struct{}
}

// add registers middleware.
func (registry *middlewareRegistry) add(middleware ...Middleware) {
	registry.delivery = append(registry.delivery, middleware...)
}

// reserve marks id as registered without adding any middleware.
func (registry *middlewareRegistry) reserve(id ProviderTypeID) error {
	if _, ok := registry.providers[id]; ok {
		return ErrDuplicateProvider
	}
	registry.providers[id] = struct{}{}
	return nil
}

// addProvider registers the middleware methods of provider.
func (registry *middlewareRegistry) addProvider(provider ProvidesMiddleware) error {
	hasMethod, ok := provider.(ProvidesDelivery)
	if !ok {
		return ErrNoMiddlewareMethods
	}

	if err := registry.reserve(provider.TypeID()); err != nil {
		return err
	}

	registry.add(hasMethod.Delivery)
	return nil
}

// wrap applies middleware to handler so the first registered middleware runs first.
func wrap(handler HandlerFunc, middleware []Middleware) HandlerFunc {
	for i := len(middleware) - 1; i >= 0; i-- {
		handler = middleware[i](handler)
	}
	return handler
}

func newMiddlewareRegistry() middlewareRegistry {
	return middlewareRegistry{
		providers: make(map[ProviderTypeID]struct{}),
	}
}
