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

	// blog service
	router.HandlerFunc(http.MethodGet, "/v1/blogs", app.listBlogsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/blogs", app.requireAuthUser(app.createBlogHandler))
	router.HandlerFunc(http.MethodGet, "/v1/blogs/slug/:slug", app.getBlogBySlugHandler)
	router.HandlerFunc(http.MethodPut, "/v1/blogs/:id", app.requireAuthUser(app.updateBlogHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/blogs/:id", app.requireAuthUser(app.deleteBlogHandler))
	router.HandlerFunc(http.MethodPost, "/v1/blogs/:id/like", app.requireAuthUser(app.toggleBlogLikeHandler))
	router.HandlerFunc(http.MethodPost, "/v1/blogs/:id/rating", app.requireAuthUser(app.rateBlogHandler))
	router.HandlerFunc(http.MethodGet, "/v1/comments", app.listCommentsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/comments", app.requireAuthUser(app.createCommentHandler))
	router.HandlerFunc(http.MethodPost, "/v1/comments/:id/like", app.requireAuthUser(app.toggleCommentLikeHandler))

	// uploads
	router.HandlerFunc(http.MethodPost, "/v1/uploads/images", app.requireAuthUser(app.uploadImageHandler))
	router.ServeFiles("/v1/static/uploads/*filepath", http.Dir(app.config.UploadDir))

	// AI gateway
	router.HandlerFunc(http.MethodPost, "/v1/ai/process", app.processAIHandler)
	router.HandlerFunc(http.MethodPost, "/v1/ai/research/:vertical", app.researchHandler)
	router.HandlerFunc(http.MethodPost, "/v1/ai/plan/:vertical", app.planHandler)
	router.HandlerFunc(http.MethodPost, "/v1/ai/workflows/research-and-plan", app.researchAndPlanHandler)
	router.HandlerFunc(http.MethodGet, "/v1/ai/status", app.aiStatusHandler)

	// contact
	router.HandlerFunc(http.MethodPost, "/v1/contact", app.contactHandler)

	return app.recoverPanic(app.rateLimit(app.logRequest(app.authenticate(router))))
}
