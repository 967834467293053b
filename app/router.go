package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/v1/users/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/logout", app.logoutUserHandler)
	router.HandlerFunc(http.MethodGet, "/v1/users/me", app.requireAuthUser(app.currentUserHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/users/me", app.requireAuthUser(app.updateUserHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/intro", app.requireAuthUser(app.introSeenHandler))
	router.HandlerFunc(http.MethodPut, "/v1/users/intro", app.requireAuthUser(app.markIntroSeenHandler))

	// blog service. By-id routes live under /v1/blogs/id/ because httprouter
	// does not allow a wildcard next to the static slug, user and new segments.
	router.HandlerFunc(http.MethodGet, "/v1/blogs", app.getPublishedBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs/new", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/v1/blogs/id/:id", app.getBlogHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/blogs/id/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/blogs/id/:id", app.requireAuthUser(app.deleteBlogHandler))
	router.HandlerFunc(http.MethodPut, "/v1/blogs/id/:id/publish", app.requireAuthUser(app.publishBlogHandler))
	router.HandlerFunc(http.MethodPut, "/v1/blogs/id/:id/unpublish", app.requireAuthUser(app.unpublishBlogHandler))
	router.HandlerFunc(http.MethodPost, "/v1/blogs/id/:id/views", app.incrementViewsHandler)
	router.HandlerFunc(http.MethodGet, "/v1/blogs/slug/:slug", app.getBlogBySlugHandler)
	router.HandlerFunc(http.MethodGet, "/v1/blogs/user/:id", app.getBlogsByUserIdHandler)

	return app.recoverPanic(app.rateLimit(app.logRequest(app.authenticate(router))))
}
