package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/schoolportal/core/content"
)

// bindID reads the ":id" path param. Ids that cannot exist are reported as not found.
func bindID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// clientState returns the local state of the authenticated caller.
func clientState(ctx echo.Context, store *content.Store) (*content.ClientState, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil, err
	}
	return store.Client(claims.Subject), nil
}
