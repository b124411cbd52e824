package rpc

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/rs/zerolog/log"
)

// Router is satisfied by chi.Router and http.ServeMux
type Router interface {
	Handle(pattern string, handler http.Handler)
}

// Unary mounts fn at procedure as a Connect unary endpoint.
func Unary[Req, Res any](r Router, procedure string, fn func(context.Context, *Req) (*Res, error), opts ...connect.HandlerOption) {
	options := append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	r.Handle(procedure, connect.NewUnaryHandler(procedure, func(ctx context.Context, req *connect.Request[Req]) (*connect.Response[Res], error) {
		res, err := fn(ctx, req.Msg)
		if err != nil {
			return nil, Error(procedure, err)
		}
		return connect.NewResponse(res), nil
	}, options...))
}

// Error converts an application error into a Connect error with a matching code.
func Error(procedure string, err error) error {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	code := apperr.ConnectCode(err)
	if code == connect.CodeInternal {
		log.Error().Err(err).Str("procedure", procedure).Msg("Request failed")
	}
	return connect.NewError(code, err)
}

// Empty is the request or response of procedures that carry no data
type Empty struct{}
