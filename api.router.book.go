package main

import (
	"github.com/julienschmidt/httprouter"
)

// APIPrefix is the common path of all public endpoints.
const APIPrefix = "/api"

// SetupBookRoutes injects book related the api endpoints.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET(APIPrefix+"/", m.public(api.Index))
	router.GET(APIPrefix+"/health", m.public(api.Health))
	router.POST(APIPrefix+"/books", m.public(api.CreateBook))
	return router
}
