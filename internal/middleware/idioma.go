package middleware

import (
	"github.com/GMEPPO/EPPO-WEBV2-sub001/internal/i18n"

	"github.com/gin-gonic/gin"
)

const IdiomaKey = "idioma"

// Idioma negotiates the response language: X-Idioma header, then ?lang=,
// then Accept-Language, then the configured default.
func Idioma() gin.HandlerFunc {
	return func(c *gin.Context) {
		lang := explicito(c.GetHeader("X-Idioma"))
		if lang == "" {
			lang = explicito(c.Query("lang"))
		}
		if lang == "" {
			lang = i18n.Detect(c.GetHeader("Accept-Language"))
		}
		c.Set(IdiomaKey, lang)
		c.Header("Content-Language", string(lang))
		c.Next()
	}
}

func explicito(code string) i18n.Idioma {
	switch l := i18n.Idioma(code); l {
	case i18n.ES, i18n.PT, i18n.EN:
		return l
	}
	return ""
}

// GetIdioma returns the negotiated language, or the default when Idioma did
// not run.
func GetIdioma(c *gin.Context) i18n.Idioma {
	if v, ok := c.Get(IdiomaKey); ok {
		if l, ok := v.(i18n.Idioma); ok {
			return l
		}
	}
	return i18n.Default
}
