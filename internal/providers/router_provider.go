package providers

import (
	"bibled/internal/structures"
	"net/http"
)

type RouterProviderInterface interface {
	Get(url string, handler http.Handler)
	Post(url string, handler http.Handler)
	Delete(url string, handler http.Handler)
	GetRoutes() []structures.Route
}

type RouterProvider struct {
	routes []structures.Route
	index  map[string]int
}

func (rp *RouterProvider) Get(url string, handler http.Handler) {
	rp.add(url, http.MethodGet, handler)
}

func (rp *RouterProvider) Post(url string, handler http.Handler) {
	rp.add(url, http.MethodPost, handler)
}

func (rp *RouterProvider) Delete(url string, handler http.Handler) {
	rp.add(url, http.MethodDelete, handler)
}

func (rp *RouterProvider) GetRoutes() []structures.Route {
	return rp.routes
}

// add registers handler for method on url. Several methods may share one url;
// they are dispatched by a single handler so the url is registered once on the mux.
func (rp *RouterProvider) add(url, method string, handler http.Handler) {
	if i, ok := rp.index[url]; ok {
		rp.routes[i].Handler.(methodMux)[method] = handler
		return
	}
	rp.index[url] = len(rp.routes)
	rp.routes = append(rp.routes, structures.Route{
		Url:     url,
		Handler: methodHandler(method, handler),
	})
}

func NewRouterProvider() RouterProviderInterface {
	return &RouterProvider{index: make(map[string]int)}
}

type methodMux map[string]http.Handler

func (m methodMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	handler, ok := m[r.Method]
	if !ok {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	handler.ServeHTTP(w, r)
}

func methodHandler(method string, handler http.Handler) http.Handler {
	return methodMux{method: handler}
}
