package http

import (
	"net/http"

	"github.com/bfeurer/jass-stats-service/internal/validation"
	"github.com/go-chi/chi/v5"
)

type playerParams struct {
	PlayerID string `validate:"required,custom_id,min=1,max=100"`
}

func playerParamsFrom(r *http.Request) (*playerParams, error) {
	params := &playerParams{PlayerID: chi.URLParam(r, "playerID")}

	if err := validation.ValidateStruct(params); err != nil {
		return nil, err
	}

	return params, nil
}

type chartParams struct {
	GroupID string `validate:"required,custom_id,min=1,max=100"`
	Metric  string `validate:"required"`
}

func chartParamsFrom(r *http.Request) (*chartParams, error) {
	params := &chartParams{
		GroupID: chi.URLParam(r, "groupID"),
		Metric:  r.URL.Query().Get("metric"),
	}

	if err := validation.ValidateStruct(params); err != nil {
		return nil, err
	}

	return params, nil
}
