package serverutils

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// QueryValues keeps repeated keys such as journals[] that ctx.Query would collapse.
func QueryValues(ctx *fiber.Ctx) url.Values {
	values := url.Values{}
	ctx.Context().QueryArgs().VisitAll(func(key, value []byte) {
		values.Add(string(key), string(value))
	})
	return values
}
