package posts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/serjblog/internal/auth"
	"github.com/2beens/serjblog/internal/forms"
	"github.com/2beens/serjblog/internal/middleware"
	"github.com/2beens/serjblog/internal/telemetry/metrics"
	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/pkg"
)

const (
	MsgLoginToComment = "You need to login or register to comment."
	msgTitleTaken     = "A post with this title already exists."
)

//go:generate mockgen -source=handler.go -destination=handler_mocks_test.go -package=posts

type postsRepo interface {
	All(ctx context.Context) ([]*Post, error)
	Get(ctx context.Context, id int) (*Post, error)
	TitleTaken(ctx context.Context, title string, excludeID int) (bool, error)
	Add(ctx context.Context, post *Post) error
	Update(ctx context.Context, id int, title, subtitle, imgURL, body string) error
	Delete(ctx context.Context, id int) error
	AddComment(ctx context.Context, comment *Comment) error
	Comments(ctx context.Context, postID int) ([]*Comment, error)
}

type indexPage struct {
	auth.Page
	Posts []*Post `json:"posts"`
}

type postPage struct {
	auth.Page
	Post     *Post             `json:"post"`
	Comments []*Comment        `json:"comments"`
	Form     forms.CommentForm `json:"form"`
	Errors   forms.Errors      `json:"errors,omitempty"`
}

type postFormPage struct {
	auth.Page
	IsEdit bool           `json:"is_edit"`
	PostID int            `json:"post_id,omitempty"`
	Form   forms.PostForm `json:"form"`
	Errors forms.Errors   `json:"errors,omitempty"`
}

type Handler struct {
	repo           postsRepo
	sessions       *auth.SessionManager
	metricsManager *metrics.Manager
	// ability to inject the clock that dates new posts (for unit testing)
	now func() time.Time
}

func NewHandler(
	repo postsRepo,
	sessions *auth.SessionManager,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		sessions:       sessions,
		metricsManager: metricsManager,
		now:            time.Now,
	}
}

func (handler *Handler) SetupRoutes(router *mux.Router) {
	router.HandleFunc("/", handler.handleIndex).Methods("GET").Name("index")
	router.HandleFunc("/post/{id:[0-9]+}", handler.handlePost).Methods("GET").Name("post")
	router.HandleFunc("/post/{id:[0-9]+}", handler.handleNewComment).Methods("POST").Name("post-comment")

	// content management, invisible to everyone but the admin
	router.Handle("/new-post", adminOnly(handler.handleNewPostPage)).Methods("GET").Name("new-post")
	router.Handle("/new-post", adminOnly(handler.handleNewPost)).Methods("POST").Name("new-post-submit")
	router.Handle("/edit-post/{id:[0-9]+}", adminOnly(handler.handleEditPostPage)).Methods("GET").Name("edit-post")
	router.Handle("/edit-post/{id:[0-9]+}", adminOnly(handler.handleEditPost)).Methods("POST").Name("edit-post-submit")
	router.Handle("/delete/{id:[0-9]+}", adminOnly(handler.handleDeletePost)).Methods("GET").Name("delete-post")
}

func adminOnly(handlerFunc http.HandlerFunc) http.Handler {
	return middleware.AdminOnly(handlerFunc)
}

func (handler *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	allPosts, err := handler.repo.All(r.Context())
	if err != nil {
		log.Errorf("get all posts error: %s", err)
		http.Error(w, "get all posts error", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, http.StatusOK, indexPage{
		Page:  handler.sessions.Page(r),
		Posts: nonNilPosts(allPosts),
	})
}

func (handler *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	post, ok := handler.postFromPath(w, r)
	if !ok {
		return
	}
	handler.renderPost(w, r, http.StatusOK, post, forms.CommentForm{}, nil)
}

func (handler *Handler) handleNewComment(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "postsHandler.newComment")
	defer span.End()

	post, ok := handler.postFromPath(w, r)
	if !ok {
		return
	}

	var form forms.CommentForm
	fieldErrors, err := forms.Decode(r, &form)
	if err != nil {
		log.Errorf("new comment, %s", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if !fieldErrors.Empty() {
		handler.renderPost(w, r, http.StatusBadRequest, post, form, fieldErrors)
		return
	}

	user := auth.CurrentUser(ctx)
	if user == nil {
		if err := handler.sessions.Flash(ctx, w, r, MsgLoginToComment); err != nil {
			log.Errorf("new comment, flash: %s", err)
		}
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	comment := &Comment{
		PostID:     post.ID,
		AuthorID:   user.ID,
		AuthorName: user.Name,
		Text:       form.CommentText,
	}
	if err := handler.repo.AddComment(ctx, comment); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Errorf("add comment to post %d failed: %s", post.ID, err)
		http.Error(w, "add comment failed", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterComments.Inc()
	log.Tracef("new comment %d on post %d by user %d", comment.ID, post.ID, user.ID)

	handler.renderPost(w, r, http.StatusOK, post, forms.CommentForm{}, nil)
}

func (handler *Handler) handleNewPostPage(w http.ResponseWriter, r *http.Request) {
	pkg.WriteJSON(w, http.StatusOK, postFormPage{Page: handler.sessions.Page(r)})
}

func (handler *Handler) handleNewPost(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "postsHandler.newPost")
	defer span.End()

	form, ok := handler.decodePostForm(w, r, 0)
	if !ok {
		return
	}

	user := auth.CurrentUser(ctx)
	newPost := &Post{
		AuthorID:   user.ID,
		AuthorName: user.Name,
		Title:      form.Title,
		Subtitle:   form.Subtitle,
		Date:       handler.now().Format(DateLayout),
		Body:       form.Body,
		ImgURL:     form.ImgURL,
	}
	if err := handler.repo.Add(ctx, newPost); err != nil {
		if errors.Is(err, ErrPostTitleExists) {
			handler.renderPostForm(w, r, 0, form, forms.Errors{"title": msgTitleTaken})
			return
		}
		log.Errorf("add new post failed: %s", err)
		http.Error(w, "add new post failed", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterPosts.WithLabelValues("new").Inc()
	log.Debugf("new post %d: [%s] added", newPost.ID, newPost.Title)

	http.Redirect(w, r, "/", http.StatusFound)
}

func (handler *Handler) handleEditPostPage(w http.ResponseWriter, r *http.Request) {
	post, ok := handler.postFromPath(w, r)
	if !ok {
		return
	}

	pkg.WriteJSON(w, http.StatusOK, postFormPage{
		Page:   handler.sessions.Page(r),
		IsEdit: true,
		PostID: post.ID,
		Form: forms.PostForm{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			ImgURL:   post.ImgURL,
			Body:     post.Body,
		},
	})
}

func (handler *Handler) handleEditPost(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "postsHandler.editPost")
	defer span.End()

	post, ok := handler.postFromPath(w, r)
	if !ok {
		return
	}

	form, ok := handler.decodePostForm(w, r, post.ID)
	if !ok {
		return
	}

	if err := handler.repo.Update(ctx, post.ID, form.Title, form.Subtitle, form.ImgURL, form.Body); err != nil {
		switch {
		case errors.Is(err, ErrPostNotFound):
			http.NotFound(w, r)
		case errors.Is(err, ErrPostTitleExists):
			handler.renderPostForm(w, r, post.ID, form, forms.Errors{"title": msgTitleTaken})
		default:
			log.Errorf("update post %d failed: %s", post.ID, err)
			http.Error(w, "update post failed", http.StatusInternalServerError)
		}
		return
	}

	handler.metricsManager.CounterPosts.WithLabelValues("edit").Inc()

	http.Redirect(w, r, fmt.Sprintf("/post/%d", post.ID), http.StatusFound)
}

func (handler *Handler) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrPostNotFound) {
			http.NotFound(w, r)
			return
		}
		log.Errorf("delete post %d: %s", id, err)
		http.Error(w, "error, post not deleted, internal server error", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterPosts.WithLabelValues("delete").Inc()
	log.Debugf("post %d deleted", id)

	http.Redirect(w, r, "/", http.StatusFound)
}

// decodePostForm validates the submitted post, including the title uniqueness,
// and renders the form with errors when it is not acceptable.
func (handler *Handler) decodePostForm(w http.ResponseWriter, r *http.Request, postID int) (forms.PostForm, bool) {
	var form forms.PostForm
	fieldErrors, err := forms.Decode(r, &form)
	if err != nil {
		log.Errorf("post form, %s", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return form, false
	}
	if !fieldErrors.Empty() {
		handler.renderPostForm(w, r, postID, form, fieldErrors)
		return form, false
	}

	taken, err := handler.repo.TitleTaken(r.Context(), form.Title, postID)
	if err != nil {
		log.Errorf("post form, check title: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return form, false
	}
	if taken {
		handler.renderPostForm(w, r, postID, form, forms.Errors{"title": msgTitleTaken})
		return form, false
	}

	return form, true
}

func (handler *Handler) renderPostForm(w http.ResponseWriter, r *http.Request, postID int, form forms.PostForm, fieldErrors forms.Errors) {
	pkg.WriteJSON(w, http.StatusBadRequest, postFormPage{
		Page:   handler.sessions.Page(r),
		IsEdit: postID != 0,
		PostID: postID,
		Form:   form,
		Errors: fieldErrors,
	})
}

func (handler *Handler) renderPost(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	post *Post,
	form forms.CommentForm,
	fieldErrors forms.Errors,
) {
	comments, err := handler.repo.Comments(r.Context(), post.ID)
	if err != nil {
		log.Errorf("get comments for post %d: %s", post.ID, err)
		http.Error(w, "get post comments error", http.StatusInternalServerError)
		return
	}
	if comments == nil {
		comments = []*Comment{}
	}

	pkg.WriteJSON(w, status, postPage{
		Page:     handler.sessions.Page(r),
		Post:     post,
		Comments: comments,
		Form:     form,
		Errors:   fieldErrors,
	})
}

// postFromPath loads the post named by the {id} path param, answering 404 when there is none.
func (handler *Handler) postFromPath(w http.ResponseWriter, r *http.Request) (*Post, bool) {
	id, err := pathID(r)
	if err != nil {
		http.Error(w, "error, id NaN", http.StatusBadRequest)
		return nil, false
	}

	post, err := handler.repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrPostNotFound) {
			http.NotFound(w, r)
			return nil, false
		}
		log.Errorf("get post %d: %s", id, err)
		http.Error(w, "get post error", http.StatusInternalServerError)
		return nil, false
	}

	return post, true
}

func pathID(r *http.Request) (int, error) {
	return strconv.Atoi(mux.Vars(r)["id"])
}

func nonNilPosts(posts []*Post) []*Post {
	if posts == nil {
		return []*Post{}
	}
	return posts
}
