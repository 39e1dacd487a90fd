package core

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const providersBasePath = "/api/v1/providers"

type ProviderService struct {
	client      *RESTClient
	instr       *instrumentation
	errorMapper ErrorMapper
}

func newProviderService(client *RESTClient, instr *instrumentation, mapper ErrorMapper) *ProviderService {
	return &ProviderService{client: client, instr: instr, errorMapper: mapper}
}

func (s *ProviderService) List(ctx context.Context, filter ProviderFilter, completion Completion[[]Provider]) *Task[[]Provider] {
	return Go(ctx, func(ctx context.Context) ([]Provider, error) {
		return s.list(ctx, filter)
	}, completion)
}

func (s *ProviderService) list(ctx context.Context, filter ProviderFilter) (providers []Provider, err error) {
	startedAt := time.Now().UTC()
	market := strings.ToUpper(strings.TrimSpace(filter.Market))
	fields := map[string]any{"market": market}
	defer func() {
		fields["count"] = len(providers)
		s.instr.observeOperation(ctx, startedAt, "providers_list", err, fields)
	}()

	path := providersBasePath
	if market != "" {
		path += "/" + url.PathEscape(market)
	}
	query := url.Values{}
	for _, capability := range filter.Capabilities {
		if value := normalizeWireEnum(string(capability)); value != "" {
			query.Add("capability", value)
		}
	}
	if filter.IncludeTestProviders {
		query.Set("includeTestProviders", "true")
	}
	res, err := s.client.Do(ctx, RESTRequest{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return nil, s.mapError(err)
	}
	providers, err = DecodeProviders(res.Body)
	if err != nil {
		return nil, s.mapError(err)
	}
	return providers, nil
}

func (s *ProviderService) mapError(err error) error {
	if err == nil || s == nil || s.errorMapper == nil {
		return err
	}
	if mapped := s.errorMapper(err); mapped != nil {
		return mapped
	}
	return err
}
