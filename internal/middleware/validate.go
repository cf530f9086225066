package middleware

import (
	"finance-ledger/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	ctxKeyJSON  = "validated.json"
	ctxKeyURI   = "validated.uri"
	ctxKeyQuery = "validated.query"
)

// ValidateJSON binds and validates the request body into T. On failure it
// answers 400 with field details and the handler chain stops.
func ValidateJSON[T any]() gin.HandlerFunc {
	return validate[T](ctxKeyJSON, func(c *gin.Context, v *T) error { return c.ShouldBindJSON(v) })
}

// ValidateURI binds and validates path parameters into T.
func ValidateURI[T any]() gin.HandlerFunc {
	return validate[T](ctxKeyURI, func(c *gin.Context, v *T) error { return c.ShouldBindUri(v) })
}

// ValidateQuery binds and validates the query string into T.
func ValidateQuery[T any]() gin.HandlerFunc {
	return validate[T](ctxKeyQuery, func(c *gin.Context, v *T) error { return c.ShouldBindQuery(v) })
}

func validate[T any](key string, bind func(*gin.Context, *T) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := new(T)
		if err := bind(c, v); err != nil {
			util.ValidationError(c, util.FieldErrors(err))
			c.Abort()
			return
		}
		c.Set(key, v)
		c.Next()
	}
}

// JSON returns the body stored by ValidateJSON[T]. It panics when the route
// is missing the matching validator, which the recovery middleware turns into a 500.
func JSON[T any](c *gin.Context) *T { return mustGet[T](c, ctxKeyJSON) }

// URI returns the path parameters stored by ValidateURI[T].
func URI[T any](c *gin.Context) *T { return mustGet[T](c, ctxKeyURI) }

// Query returns the query parameters stored by ValidateQuery[T].
func Query[T any](c *gin.Context) *T { return mustGet[T](c, ctxKeyQuery) }

func mustGet[T any](c *gin.Context, key string) *T {
	v, ok := c.Get(key)
	if !ok {
		panic("middleware: no validated value under " + key)
	}
	t, ok := v.(*T)
	if !ok {
		panic("middleware: validated value under " + key + " has another type")
	}
	return t
}
