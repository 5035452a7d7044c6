package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. Error keys match service.Kind.String().
const (
	KeyValidation        = "validation"
	KeyUnauthorized      = "unauthorized"
	KeyForbidden         = "forbidden"
	KeyNotFound          = "not_found"
	KeyConflict          = "conflict"
	KeyInsufficientStock = "insufficient_stock"
	KeyInternal          = "internal"
	KeyLoggedOut         = "logged_out"
	KeyCheckoutDone      = "checkout_done"
	KeyTooManyRequests   = "too_many_requests"
)

// Spanish first: it is the storefront's default language.
var supported = []language.Tag{language.Spanish, language.English}

var matcher = language.NewMatcher(supported)

var cat = func() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	set := func(tag language.Tag, pairs map[string]string) {
		for k, v := range pairs {
			_ = b.SetString(tag, k, v)
		}
	}
	set(language.Spanish, map[string]string{
		KeyValidation:        "Los datos enviados no son válidos",
		KeyUnauthorized:      "Usuario o contraseña incorrectos",
		KeyForbidden:         "No tienes permisos para esta acción",
		KeyNotFound:          "Recurso no encontrado",
		KeyConflict:          "El registro ya existe",
		KeyInsufficientStock: "Stock insuficiente",
		KeyInternal:          "Error interno, intenta de nuevo",
		KeyLoggedOut:         "Sesión cerrada",
		KeyCheckoutDone:      "Compra realizada con éxito",
		KeyTooManyRequests:   "Demasiados intentos, espera un momento",
	})
	set(language.English, map[string]string{
		KeyValidation:        "The submitted data is not valid",
		KeyUnauthorized:      "Wrong username or password",
		KeyForbidden:         "You are not allowed to do that",
		KeyNotFound:          "Resource not found",
		KeyConflict:          "The record already exists",
		KeyInsufficientStock: "Not enough stock",
		KeyInternal:          "Internal error, please try again",
		KeyLoggedOut:         "Logged out",
		KeyCheckoutDone:      "Purchase completed",
		KeyTooManyRequests:   "Too many attempts, please wait",
	})
	return b
}()

// Match picks the best supported language for an Accept-Language header.
func Match(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return language.Spanish
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return language.Spanish
	}
	return supported[idx]
}

func Printer(acceptLanguage string) *message.Printer {
	return message.NewPrinter(Match(acceptLanguage), message.Catalog(cat))
}

// T translates key for the given Accept-Language header.
func T(acceptLanguage, key string) string {
	return Printer(acceptLanguage).Sprintf(key)
}
