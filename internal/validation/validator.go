package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// DefaultMinPasswordLength is the shortest password accepted at registration
const DefaultMinPasswordLength = 6

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Errors is the list of field errors for one form submission
type Errors []ValidationError

// Error implements the error interface
func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Field + ": " + ve.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether a field has at least one error
func (e Errors) Has(field string) bool {
	for _, ve := range e {
		if ve.Field == field {
			return true
		}
	}
	return false
}

// LoginForm is the local login form
type LoginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// RegisterForm is the local registration form
type RegisterForm struct {
	UserName string `form:"user_name"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

// ArticleForm is the article editor form
type ArticleForm struct {
	Title   string `form:"title"`
	Content string `form:"content"`
}

// SettingsForm is the blog settings form
type SettingsForm struct {
	BlogTitle  string `form:"blog_title"`
	AuthorName string `form:"author_name"`
}

// CommentForm is the reader comment form. It is accepted as submitted.
type CommentForm struct {
	CommenterName string `form:"commenter_name"`
	Comment       string `form:"comment"`
}

// Validator provides validation methods
type Validator struct {
	minPasswordLength int
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{minPasswordLength: DefaultMinPasswordLength}
}

// ValidateLogin normalizes the email and checks login input
func (v *Validator) ValidateLogin(form *LoginForm) Errors {
	var errors Errors

	form.Email = NormalizeEmail(form.Email)
	form.Password = strings.TrimSpace(form.Password)

	if !IsValidEmail(form.Email) {
		errors = append(errors, ValidationError{Field: "email", Message: "Enter a valid email", Value: form.Email})
	}
	if form.Password == "" {
		errors = append(errors, ValidationError{Field: "password", Message: "Password is required"})
	}

	return errors
}

// ValidateRegistration normalizes and checks registration input
func (v *Validator) ValidateRegistration(form *RegisterForm) Errors {
	var errors Errors

	form.UserName = strings.TrimSpace(form.UserName)
	form.Email = NormalizeEmail(form.Email)
	form.Password = strings.TrimSpace(form.Password)

	if form.UserName == "" {
		errors = append(errors, ValidationError{Field: "user_name", Message: "User name is required"})
	}
	if !IsValidEmail(form.Email) {
		errors = append(errors, ValidationError{Field: "email", Message: "Enter a valid email", Value: form.Email})
	}
	if len(form.Password) < v.minPasswordLength {
		errors = append(errors, ValidationError{Field: "password", Message: fmt.Sprintf("Password must be at least %d characters long", v.minPasswordLength)})
	}

	return errors
}

// ValidateArticle checks the editor form. Values are stored as typed.
func (v *Validator) ValidateArticle(form *ArticleForm) Errors {
	var errors Errors

	if strings.TrimSpace(form.Title) == "" {
		errors = append(errors, ValidationError{Field: "title", Message: "Title is required"})
	}
	if strings.TrimSpace(form.Content) == "" {
		errors = append(errors, ValidationError{Field: "content", Message: "Content is required"})
	}

	return errors
}

// ValidateSettings checks the settings form
func (v *Validator) ValidateSettings(form *SettingsForm) Errors {
	var errors Errors

	form.BlogTitle = strings.TrimSpace(form.BlogTitle)
	form.AuthorName = strings.TrimSpace(form.AuthorName)

	if form.BlogTitle == "" {
		errors = append(errors, ValidationError{Field: "blog_title", Message: "Blog title is required"})
	}
	if form.AuthorName == "" {
		errors = append(errors, ValidationError{Field: "author_name", Message: "Author name is required"})
	}

	return errors
}

// NormalizeEmail trims and lowercases an address so lookups are case-insensitive
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsValidEmail checks email syntax
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}
