package forms

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/microcosm-cc/bluemonday"
)

const maxMultipartMemory = 8 << 20

var (
	decoder   = newDecoder()
	validate  = newValidator()
	ugcPolicy = bluemonday.UGCPolicy()
)

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	// submit buttons and csrf fields of the html forms are not part of the payload
	d.IgnoreUnknownKeys(true)
	return d
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields under their form names
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("schema"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// Errors maps a form field name to a message explaining why its value was rejected.
type Errors map[string]string

func (e Errors) Empty() bool {
	return len(e) == 0
}

type form interface {
	sanitize()
}

type RegisterForm struct {
	Email    string `schema:"email" json:"email" validate:"required,email,max=250"`
	Name     string `schema:"name" json:"name" validate:"required,max=250"`
	Password string `schema:"password" json:"-" validate:"required"`
}

func (f *RegisterForm) sanitize() {
	f.Email = strings.TrimSpace(f.Email)
	f.Name = strings.TrimSpace(f.Name)
}

type LoginForm struct {
	Email    string `schema:"email" json:"email" validate:"required,email,max=250"`
	Password string `schema:"password" json:"-" validate:"required"`
}

func (f *LoginForm) sanitize() {
	f.Email = strings.TrimSpace(f.Email)
}

type PostForm struct {
	Title    string `schema:"title" json:"title" validate:"required,max=250"`
	Subtitle string `schema:"subtitle" json:"subtitle" validate:"required,max=250"`
	ImgURL   string `schema:"img_url" json:"img_url" validate:"required,url,max=250"`
	Body     string `schema:"body" json:"body" validate:"required"`
}

func (f *PostForm) sanitize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Subtitle = strings.TrimSpace(f.Subtitle)
	f.ImgURL = strings.TrimSpace(f.ImgURL)
	f.Body = strings.TrimSpace(ugcPolicy.Sanitize(f.Body))
}

type CommentForm struct {
	CommentText string `schema:"comment_text" json:"comment_text" validate:"required"`
}

func (f *CommentForm) sanitize() {
	f.CommentText = strings.TrimSpace(ugcPolicy.Sanitize(f.CommentText))
}

// Decode fills f from the submitted request form and validates it.
// A non-nil error means the request body itself could not be read,
// rejected field values are reported through Errors.
func Decode(r *http.Request, f form) (Errors, error) {
	if err := parse(r); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	if err := decoder.Decode(f, r.PostForm); err != nil {
		var multiErr schema.MultiError
		if !errors.As(err, &multiErr) {
			return nil, fmt.Errorf("decode form: %w", err)
		}
		fieldErrors := Errors{}
		for field, fieldErr := range multiErr {
			fieldErrors[field] = fieldErr.Error()
		}
		return fieldErrors, nil
	}

	f.sanitize()

	return Validate(f), nil
}

// Validate runs the validate struct tags of a form, nil means the form is valid.
func Validate(f any) Errors {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return Errors{"": err.Error()}
	}

	fieldErrors := Errors{}
	for _, fe := range validationErrors {
		fieldErrors[fe.Field()] = message(fe)
	}
	return fieldErrors
}

func parse(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(maxMultipartMemory)
	}
	return r.ParseForm()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Invalid email address."
	case "url":
		return "Invalid URL."
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	default:
		return fmt.Sprintf("Invalid value (%s).", fe.Tag())
	}
}
