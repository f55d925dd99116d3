package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"reflect"
	"time"

	"github.com/jmanurodriguez/cloudinary-portal/api"
	"github.com/jmanurodriguez/cloudinary-portal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Middleware func(http.Handler) http.Handler

// ─── public fluent builder ───────────────────────────────────
type Builder struct {
	httpPort    string
	staticDir   string
	sslProvider SSLProvider

	cors  *cors.Cors
	extra map[string]http.HandlerFunc

	middleware []reflect.Value // func(deps...) Middleware
	singletons map[reflect.Type]reflect.Value
	providers  map[reflect.Type]reflect.Value
	reg        []reflect.Value // func(deps...) RestController
}

func New() *Builder {
	return &Builder{
		cors:       cors.AllowAll(),
		extra:      map[string]http.HandlerFunc{},
		singletons: map[reflect.Type]reflect.Value{},
		providers:  map[reflect.Type]reflect.Value{},
	}
}

// ----- basic wiring ----------------------------------------------------------

func (b *Builder) HTTPPort(p string) *Builder { b.httpPort = p; return b }

// StaticDir sets the directory to serve static files from (e.g., "./static").
// Static files will be served on the same HTTP port at /static/* path.
func (b *Builder) StaticDir(dir string) *Builder { b.staticDir = dir; return b }

func (b *Builder) EnableSSL(p SSLProvider) *Builder { b.sslProvider = p; return b }

func (b *Builder) CORS(c *cors.Cors) *Builder { b.cors = c; return b }

func (b *Builder) Handle(pattern string, h http.HandlerFunc) *Builder {
	b.extra[pattern] = h
	return b
}

// Use adds a middleware in front of every route. factory is a func whose
// arguments are resolved from the container and which returns a Middleware
// (or a func(http.Handler) http.Handler). Middlewares run in the order added.
func (b *Builder) Use(factory any) *Builder {
	v := reflect.ValueOf(factory)
	if v.Kind() != reflect.Func || v.Type().NumOut() != 1 {
		logger.Fatal("middleware factory must be a func returning a middleware", zap.Any("received", factory))
		return b
	}
	b.middleware = append(b.middleware, v)
	return b
}

// ----- dependency injection --------------------------------------------------

func (b *Builder) Provide(value any) *Builder {
	b.singletons[reflect.TypeOf(value)] = reflect.ValueOf(value)
	return b
}

func (b *Builder) ProvideAs(value any, ifacePtr any) *Builder {
	ifaceType := reflect.TypeOf(ifacePtr).Elem()
	val := reflect.ValueOf(value)

	if !val.Type().Implements(ifaceType) {
		logger.Fatal("Provided value does not implement the given interface",
			zap.String("valueType", val.Type().String()),
			zap.String("interfaceType", ifaceType.String()))
		return b
	}

	b.singletons[ifaceType] = val
	return b
}

func (b *Builder) ProvideFunc(fn any) *Builder {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		logger.Fatal("ProvideFunc expects a function", zap.Any("received", fn))
		return b
	}
	out := v.Type().Out(0)
	b.providers[out] = v
	return b
}

// RegisterController adds a controller built by factory. The factory's
// arguments are resolved from the container.
func (b *Builder) RegisterController(factory any) *Builder {
	v := reflect.ValueOf(factory)
	if v.Kind() != reflect.Func {
		logger.Fatal("factory must be a function", zap.Any("received", factory))
		return b
	}
	b.reg = append(b.reg, v)
	return b
}

// ----- Resolve DI and build server -------------------------------------------

func (b *Builder) Build() (*BootServer, error) {
	if b.httpPort == "" {
		return nil, errors.New("http port must be set")
	}

	// tiny DI container
	ctn := newContainer(b.singletons, b.providers)

	mux := http.NewServeMux()

	for _, factory := range b.reg {
		v, err := invokeFactory(ctn, factory)
		if err != nil {
			return nil, err
		}
		ctrl, ok := v.Interface().(RestController)
		if !ok {
			return nil, fmt.Errorf("%v does not implement RestController", v.Type())
		}
		for _, route := range ctrl.Routes() {
			mux.HandleFunc(routePattern(route), route.Handler)
		}
	}

	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /health", healthHandler)

	// register extra handlers
	for p, h := range b.extra {
		mux.HandleFunc(p, h)
	}

	// Add static file serving if configured
	if b.staticDir != "" {
		fileServer := http.FileServer(http.Dir(b.staticDir))
		mux.Handle("GET /static/", http.StripPrefix("/static/", fileServer))
	}

	mux.HandleFunc("/", notFoundHandler)

	var handler http.Handler = mux
	for i := len(b.middleware) - 1; i >= 0; i-- {
		v, err := invokeFactory(ctn, b.middleware[i])
		if err != nil {
			return nil, fmt.Errorf("middleware DI failed: %w", err)
		}
		mw, err := asMiddleware(v)
		if err != nil {
			return nil, err
		}
		handler = mw(handler)
	}
	handler = b.cors.Handler(handler)
	handler = Recover(handler)
	handler = Instrument(handler)

	lnHTTP, err := net.Listen("tcp", b.httpPort)
	if err != nil {
		return nil, err
	}

	httpSrv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       time.Minute,
		WriteTimeout:      time.Minute,
		IdleTimeout:       2 * time.Minute,
	}

	if b.sslProvider != nil {
		if err := b.sslProvider.Configure(httpSrv); err != nil {
			lnHTTP.Close()
			return nil, err
		}
	}

	return &BootServer{
		http:        httpSrv,
		lnHTTP:      lnHTTP,
		sslProvider: b.sslProvider,
	}, nil
}

// routePattern prefixes the pattern with the method. Other methods fall
// through to the catch-all and get the JSON 404.
func routePattern(r Route) string {
	if r.Method == "" {
		return r.Pattern
	}
	return r.Method + " " + r.Pattern
}

func asMiddleware(v reflect.Value) (Middleware, error) {
	switch mw := v.Interface().(type) {
	case Middleware:
		return mw, nil
	case func(http.Handler) http.Handler:
		return mw, nil
	default:
		return nil, fmt.Errorf("middleware factory returned %v", v.Type())
	}
}

// invokeFactory resolves arguments via container and calls the func.
func invokeFactory(ctn *container, fn reflect.Value) (reflect.Value, error) {
	args := make([]reflect.Value, fn.Type().NumIn())
	for i := range args {
		v, err := ctn.resolve(fn.Type().In(i))
		if err != nil {
			return v, err
		}
		args[i] = v
	}
	return fn.Call(args)[0], nil
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Servidor funcionando correctamente",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	api.WriteError(w, api.NotFound("Ruta no encontrada", ""))
}

// ----- running ---------------------------------------------------------------

type BootServer struct {
	http        *http.Server
	lnHTTP      net.Listener
	sslProvider SSLProvider
}

func (s *BootServer) Handler() http.Handler { return s.http.Handler }

func (s *BootServer) Addr() net.Addr { return s.lnHTTP.Addr() }

// Close releases the listener of a server that is not serving.
func (s *BootServer) Close() error { return s.lnHTTP.Close() }

// Serve blocks until ctx is cancelled or the server fails. On cancellation
// in-flight requests get up to ten seconds to finish.
func (s *BootServer) Serve(ctx context.Context) error {
	errCh := make(chan error, 2)

	if s.sslProvider != nil {
		go func() {
			if err := s.sslProvider.Run(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	go func() {
		logger.Info("Starting web server", zap.String("addr", s.lnHTTP.Addr().String()))

		var err error
		if s.http.TLSConfig != nil {
			err = s.http.ServeTLS(s.lnHTTP, "", "")
		} else {
			err = s.http.Serve(s.lnHTTP)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
