package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"civicsync/geo"
	"civicsync/i18n"
	"civicsync/middlewares"
	"civicsync/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const requestTimeout = 10 * time.Second

var errBadLocation = errors.New("latitude and longitude must be given together and be in range")

// responder carries what every handler needs to answer with a localized error.
type responder struct {
	messages *i18n.Bundle
	logger   *zap.Logger
}

func newResponder(messages *i18n.Bundle, logger *zap.Logger) responder {
	if messages == nil {
		messages = i18n.NewBundle()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return responder{messages: messages, logger: logger}
}

func (r responder) fail(c *gin.Context, status int, key string) {
	middlewares.Abort(c, r.messages, status, key)
}

// storeFailure maps store sentinels onto HTTP statuses.
func (r responder) storeFailure(c *gin.Context, err error, notFoundKey, op string) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		r.fail(c, http.StatusBadRequest, i18n.InvalidID)
	case errors.Is(err, store.ErrNotFound):
		r.fail(c, http.StatusNotFound, notFoundKey)
	default:
		r.logger.Error(op, zap.Error(err))
		r.fail(c, http.StatusInternalServerError, i18n.SomethingWentWrong)
	}
}

// parseLocation reads an optional coordinate pair. Both parts must be given
// or both omitted; a nil result means no location.
func parseLocation(lat, lng string) (*geo.Coordinate, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" && lng == "" {
		return nil, nil
	}
	if lat == "" || lng == "" {
		return nil, errBadLocation
	}

	latitude, err := strconv.ParseFloat(lat, 64)
	if err != nil {
		return nil, errBadLocation
	}
	longitude, err := strconv.ParseFloat(lng, 64)
	if err != nil {
		return nil, errBadLocation
	}

	c := geo.Coordinate{Latitude: latitude, Longitude: longitude}
	if !c.Valid() {
		return nil, errBadLocation
	}
	return &c, nil
}
