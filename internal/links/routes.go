package links

import "net/http"

// Routes registers the dispatcher's routes on a new mux.
//
//	GET  /               302 to /admin
//	GET  /admin          listing, ?order=slug|hits|last
//	POST /admin/create   create form
//	POST /admin/update   update form
//	POST /admin/delete   delete form
//	GET  /{slug}         302 to the slug's destination
//	*    anything else   404 for GET, 405 otherwise
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Root)
	mux.HandleFunc("GET /admin", h.Admin)
	mux.HandleFunc("POST /admin/create", h.CreateLink)
	mux.HandleFunc("POST /admin/update", h.UpdateLink)
	mux.HandleFunc("POST /admin/delete", h.DeleteLink)
	mux.HandleFunc("GET /{slug}", h.RedirectLink)
	mux.HandleFunc("/", h.Fallback)

	return mux
}
