package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/inkwell-app/inkwell/internal/blogservice"
	"github.com/inkwell-app/inkwell/internal/common"
	"github.com/inkwell-app/inkwell/internal/userservice"
)

type registerUserRequest struct {
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var input registerUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	session, err := app.userService.Register(r.Context(), input.FullName, input.Username, input.Email, input.Password)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrDuplicateEmail):
			app.failedValidationErrorResponse(w, r, map[string]string{"email": "a user with this email address already exists"})
		case errors.Is(err, userservice.ErrDuplicateUsername):
			app.failedValidationErrorResponse(w, r, map[string]string{"username": "this username is already taken"})
		case errors.Is(err, userservice.ErrOperationInFlight):
			app.conflictErrorResponse(w, r, err)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"session": session}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type loginUserRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

func (app *application) loginUserHandler(w http.ResponseWriter, r *http.Request) {
	var input loginUserRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	session, err := app.userService.Login(r.Context(), input.Email, input.Password, input.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrInvalidCredentials):
			app.invalidCredentialsErrorResponse(w, r)
		case errors.Is(err, userservice.ErrOperationInFlight):
			app.conflictErrorResponse(w, r, err)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"session": session}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// Logout clears whichever session the token identifies. Logging out an
// already-dead session is not an error.
func (app *application) logoutUserHandler(w http.ResponseWriter, r *http.Request) {
	token := app.getTokenContext(r)

	if token != "" {
		err := app.userService.Logout(r.Context(), token)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	err := app.writeJSON(w, http.StatusOK, envelope{"message": "user logged out"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) currentUserHandler(w http.ResponseWriter, r *http.Request) {
	user := app.getUserContext(r)

	err := app.writeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	var patch userservice.UpdateUserPatch

	err := app.parseJSON(w, r, &patch)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	token := app.getTokenContext(r)

	user, err := app.userService.UpdateUser(r.Context(), token, &patch)
	if err != nil {
		switch {
		case errors.Is(err, userservice.ErrNoSession):
			app.invalidAuthenticationTokenResponse(w, r)
		case errors.Is(err, userservice.ErrNotFound):
			app.notFoundErrorResponse(w, r)
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) introSeenHandler(w http.ResponseWriter, r *http.Request) {
	token := app.getTokenContext(r)

	err := app.writeJSON(w, http.StatusOK, envelope{"intro_seen": app.userService.IntroSeen(token)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) markIntroSeenHandler(w http.ResponseWriter, r *http.Request) {
	token := app.getTokenContext(r)

	app.userService.MarkIntroSeen(token)

	err := app.writeJSON(w, http.StatusOK, envelope{"message": "intro marked as seen"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type createBlogRequest struct {
	Title       string     `json:"title"`
	Excerpt     string     `json:"excerpt"`
	Content     string     `json:"content"`
	CoverImage  string     `json:"cover_image"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func (app *application) createBlogHandler(w http.ResponseWriter, r *http.Request) {
	var input createBlogRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	req := &blogservice.CreateBlogRequest{
		UserID:      user.ID,
		Title:       input.Title,
		Excerpt:     input.Excerpt,
		Content:     input.Content,
		CoverImage:  input.CoverImage,
		Category:    input.Category,
		Tags:        input.Tags,
		Status:      blogservice.BlogStatus(input.Status),
		ScheduledAt: input.ScheduledAt,
	}

	blog, err := app.blogService.CreateBlog(r.Context(), req)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.GetBlogByID(id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getBlogBySlugHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readIDParam(r, "slug")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blog, err := app.blogService.GetBlogBySlug(slug)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// fetchOwnedBlog resolves the blog and checks that the authenticated user
// owns it. It writes the error response itself and returns nil on failure.
func (app *application) fetchOwnedBlog(w http.ResponseWriter, r *http.Request, id string) *blogservice.Blog {
	blog, err := app.blogService.GetBlogByID(id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrRecordNotFound):
			app.notFoundErrorResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return nil
	}

	user := app.getUserContext(r)
	if blog.UserID != user.ID {
		app.unAuthorizedErrorResponse(w, r)
		return nil
	}

	return blog
}

func (app *application) updateBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	var patch blogservice.UpdateBlogPatch

	err = app.parseJSON(w, r, &patch)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	if app.fetchOwnedBlog(w, r, id) == nil {
		return
	}

	err = app.blogService.UpdateBlog(r.Context(), id, &patch)
	if err != nil {
		switch {
		case errors.As(err, &common.ValidationError{}):
			validationErr := err.(common.ValidationError)
			app.failedValidationErrorResponse(w, r, validationErr.Errors)
		case errors.Is(err, blogservice.ErrInvalidTransition), errors.Is(err, blogservice.ErrScheduleRequired):
			app.conflictErrorResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	blog, err := app.blogService.GetBlogByID(id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) deleteBlogHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	if app.fetchOwnedBlog(w, r, id) == nil {
		return
	}

	err = app.blogService.DeleteBlog(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "blog deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) publishBlogHandler(w http.ResponseWriter, r *http.Request) {
	app.transitionBlogHandler(w, r, app.blogService.PublishBlog)
}

func (app *application) unpublishBlogHandler(w http.ResponseWriter, r *http.Request) {
	app.transitionBlogHandler(w, r, app.blogService.UnpublishBlog)
}

func (app *application) transitionBlogHandler(w http.ResponseWriter, r *http.Request, transition func(ctx context.Context, id string) error) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	if app.fetchOwnedBlog(w, r, id) == nil {
		return
	}

	err = transition(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, blogservice.ErrInvalidTransition), errors.Is(err, blogservice.ErrScheduleRequired):
			app.conflictErrorResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	blog, err := app.blogService.GetBlogByID(id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"blog": blog}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// View counts swallow unknown ids so stale clients never see an error here.
func (app *application) incrementViewsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	err = app.blogService.IncrementViews(r.Context(), id)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "view recorded"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getPublishedBlogsHandler(w http.ResponseWriter, r *http.Request) {
	blogs := app.blogService.GetPublishedBlogs()

	err := app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) getBlogsByUserIdHandler(w http.ResponseWriter, r *http.Request) {
	id, err := app.readIDParam(r, "id")
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	blogs := app.blogService.GetUserBlogs(id)

	err = app.writeJSON(w, http.StatusOK, envelope{"blogs": blogs}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}
