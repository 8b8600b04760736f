package di

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/kbukum/servicecore/errors"
	"github.com/kbukum/servicecore/logger"
)

// RegistrationMode tells how a key was registered.
type RegistrationMode int

const (
	Constructor RegistrationMode = iota // Built on first Resolve
	Singleton                           // Pre-created instance
)

func (m RegistrationMode) String() string {
	if m == Singleton {
		return "singleton"
	}
	return "constructor"
}

// Container defines the dependency container used by bootstrap.
type Container interface {
	Register(key string, constructor interface{}) error
	RegisterSingleton(key string, instance interface{}) error
	Resolve(ctx context.Context, key string) (interface{}, error)
	Has(key string) bool
	Registrations() []RegistrationInfo
	Close() error
}

// RegistrationInfo describes a registered key for introspection.
type RegistrationInfo struct {
	Key         string
	Mode        RegistrationMode
	Initialized bool
}

type registration struct {
	key         string
	constructor reflect.Value
	mode        RegistrationMode

	mu          sync.Mutex
	instance    interface{}
	initialized bool
}

// UnifiedContainer is the default Container.
type UnifiedContainer struct {
	mu    sync.RWMutex
	regs  map[string]*registration
	order []string
	log   *logger.Logger
}

var contextType = reflect.TypeOf((*context.Context)(nil)).Elem()
var containerType = reflect.TypeOf((*Container)(nil)).Elem()
var errorType = reflect.TypeOf((*error)(nil)).Elem()

// NewContainer creates an empty container.
func NewContainer() *UnifiedContainer {
	return &UnifiedContainer{
		regs: make(map[string]*registration),
		log:  logger.Get("di"),
	}
}

// Register adds a constructor under key. The constructor's shape is checked
// here so mistakes surface at startup rather than on first Resolve.
func (c *UnifiedContainer) Register(key string, constructor interface{}) error {
	fn := reflect.ValueOf(constructor)
	if err := checkConstructor(fn); err != nil {
		return errors.InvalidInput("constructor", fmt.Sprintf("%s: %v", key, err))
	}
	return c.add(&registration{key: key, constructor: fn, mode: Constructor})
}

// RegisterSingleton adds a pre-built instance under key.
func (c *UnifiedContainer) RegisterSingleton(key string, instance interface{}) error {
	if instance == nil {
		return errors.InvalidInput("instance", key+" is nil")
	}
	return c.add(&registration{key: key, mode: Singleton, instance: instance, initialized: true})
}

func (c *UnifiedContainer) add(reg *registration) error {
	if reg.key == "" {
		return errors.MissingField("key")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.regs[reg.key]; exists {
		return errors.AlreadyExists("dependency " + reg.key)
	}
	c.regs[reg.key] = reg
	c.order = append(c.order, reg.key)
	return nil
}

// Has reports whether key is registered.
func (c *UnifiedContainer) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.regs[key]
	return ok
}

// Resolve returns the instance for key, constructing it on first use. A
// failed construction is not cached, so the next Resolve tries again.
func (c *UnifiedContainer) Resolve(ctx context.Context, key string) (interface{}, error) {
	return c.resolve(ctx, key, nil)
}

func (c *UnifiedContainer) resolve(ctx context.Context, key string, chain []string) (interface{}, error) {
	path := make([]string, len(chain), len(chain)+1)
	copy(path, chain)
	path = append(path, key)
	for _, k := range chain {
		if k == key {
			return nil, errors.Conflict("dependency cycle: " + strings.Join(path, " -> "))
		}
	}

	c.mu.RLock()
	reg, ok := c.regs[key]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound("dependency", key)
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()
	if reg.initialized {
		return reg.instance, nil
	}

	scope := &scopedContainer{root: c, chain: path}
	instance, err := call(ctx, reg.constructor, scope)
	if err != nil {
		c.log.Debug("Constructor failed", map[string]interface{}{
			"dependency": key,
			"error":      err.Error(),
		})
		return nil, err
	}
	reg.instance = instance
	reg.initialized = true
	return instance, nil
}

// Registrations lists every key in registration order.
func (c *UnifiedContainer) Registrations() []RegistrationInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]RegistrationInfo, 0, len(c.order))
	for _, key := range c.order {
		reg := c.regs[key]
		reg.mu.Lock()
		out = append(out, RegistrationInfo{Key: key, Mode: reg.mode, Initialized: reg.initialized})
		reg.mu.Unlock()
	}
	return out
}

// Close calls Close on every built instance that has one, in reverse
// registration order, and returns the joined errors.
func (c *UnifiedContainer) Close() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var errs []error
	for i := len(c.order) - 1; i >= 0; i-- {
		reg := c.regs[c.order[i]]
		reg.mu.Lock()
		instance, built := reg.instance, reg.initialized
		reg.mu.Unlock()
		if !built {
			continue
		}
		if closer, ok := instance.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", reg.key, err))
			}
		}
	}
	return stderrors.Join(errs...)
}

// scopedContainer is the Container handed to constructors. It carries the
// resolution chain so cycles can be detected.
type scopedContainer struct {
	root  *UnifiedContainer
	chain []string
}

func (s *scopedContainer) Register(key string, constructor interface{}) error {
	return s.root.Register(key, constructor)
}

func (s *scopedContainer) RegisterSingleton(key string, instance interface{}) error {
	return s.root.RegisterSingleton(key, instance)
}

func (s *scopedContainer) Resolve(ctx context.Context, key string) (interface{}, error) {
	return s.root.resolve(ctx, key, s.chain)
}

func (s *scopedContainer) Has(key string) bool { return s.root.Has(key) }

func (s *scopedContainer) Registrations() []RegistrationInfo { return s.root.Registrations() }

func (s *scopedContainer) Close() error { return s.root.Close() }

func checkConstructor(fn reflect.Value) error {
	if fn.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function, got %s", fn.Kind())
	}
	t := fn.Type()
	switch t.NumIn() {
	case 0:
	case 1:
		if in := t.In(0); in != contextType && in != containerType {
			return fmt.Errorf("constructor argument must be context.Context or di.Container, got %s", in)
		}
	default:
		return fmt.Errorf("constructor takes at most one argument, got %d", t.NumIn())
	}
	switch t.NumOut() {
	case 1:
	case 2:
		if t.Out(1) != errorType {
			return fmt.Errorf("second constructor result must be error, got %s", t.Out(1))
		}
	default:
		return fmt.Errorf("constructor must return (T) or (T, error)")
	}
	return nil
}

func call(ctx context.Context, fn reflect.Value, scope Container) (interface{}, error) {
	var args []reflect.Value
	if fn.Type().NumIn() == 1 {
		if fn.Type().In(0) == contextType {
			args = []reflect.Value{reflect.ValueOf(&ctx).Elem()}
		} else {
			args = []reflect.Value{reflect.ValueOf(&scope).Elem()}
		}
	}

	results := fn.Call(args)
	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	out := results[0]
	if (out.Kind() == reflect.Pointer || out.Kind() == reflect.Interface) && out.IsNil() {
		return nil, errors.Internal(fmt.Errorf("constructor returned nil"))
	}
	return out.Interface(), nil
}
