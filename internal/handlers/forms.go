package handlers

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"blogsite/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

type registerForm struct {
	Name     string `form:"name" binding:"required,max=50"`
	Username string `form:"username" binding:"required,min=4,max=25"`
	Email    string `form:"email" binding:"required,min=6,max=50"`
	Password string `form:"password" binding:"required,max=72,eqfield=Confirm"`
	Confirm  string `form:"confirm"`
}

func (f registerForm) input() service.RegisterInput {
	return service.RegisterInput{Name: f.Name, Username: f.Username, Email: f.Email, Password: f.Password}
}

type postForm struct {
	Title    string `form:"title" binding:"required,max=200"`
	Subtitle string `form:"subtitle" binding:"required,max=200"`
	Author   string `form:"author" binding:"required,max=50"`
	Content  string `form:"content" binding:"required"`
}

func (f postForm) input() service.PostInput {
	return service.PostInput{Title: f.Title, Subtitle: f.Subtitle, Author: f.Author, Content: f.Content}
}

var formNamesOnce sync.Once

// useFormFieldNames makes validation errors report the form field name
// ("username") instead of the Go field name.
func useFormFieldNames() {
	formNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindForm fills dst from the posted form. Validation problems come back as
// FieldErrors; anything else is a malformed request.
func bindForm(c *gin.Context, dst any) error {
	err := c.ShouldBindWith(dst, binding.Form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	return service.FieldErrorsFrom(verrs)
}

// pathID parses a positive integer route parameter.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
