package handlers

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding rules on gin's shared
// validator engine. Call once at startup, before any route binds.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	_ = v.RegisterValidation("strongpw", strongPassword)
	_ = v.RegisterValidation("youtubechannel", youtubeChannel)
}

// strongPassword: at least 6 chars, one upper, one lower, one digit.
func strongPassword(fl validator.FieldLevel) bool {
	pw := fl.Field().String()

	if len(pw) < 6 {
		return false
	}

	var upper, lower, digit bool

	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	return upper && lower && digit
}

// youtubeChannel accepts either the main site or the music host, so a plain
// "contains" tag does not fit.
func youtubeChannel(fl validator.FieldLevel) bool {
	raw := fl.Field().String()

	u, err := url.Parse(raw)
	if err != nil {
		return false
	}

	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")

	return host == "youtube.com" || host == "music.youtube.com"
}
