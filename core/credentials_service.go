package core

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const credentialsBasePath = "/api/v1/credentials"

type CreateCredentialsRequest struct {
	ProviderID string
	Fields     map[string]string
	// RefreshableItems limits the initial refresh; the zero value refreshes
	// everything.
	RefreshableItems RefreshableItems
	AppURI           string
	CallbackURI      string
}

type UpdateCredentialsRequest struct {
	ID          string
	ProviderID  string
	Fields      map[string]string
	AppURI      string
	CallbackURI string
}

type RefreshCredentialsRequest struct {
	ID               string
	RefreshableItems RefreshableItems
	Authenticate     bool
	OptIn            bool
}

// CredentialsService issues one platform call per operation. It never retries
// and forwards transport, status and decode errors to the completion.
type CredentialsService struct {
	client      *RESTClient
	instr       *instrumentation
	errorMapper ErrorMapper
	observer    CredentialsObserver
}

func newCredentialsService(
	client *RESTClient,
	instr *instrumentation,
	mapper ErrorMapper,
	observer CredentialsObserver,
) *CredentialsService {
	return &CredentialsService{
		client:      client,
		instr:       instr,
		errorMapper: mapper,
		observer:    observer,
	}
}

func (s *CredentialsService) List(ctx context.Context, completion Completion[[]Credentials]) *Task[[]Credentials] {
	return Go(ctx, s.list, completion)
}

func (s *CredentialsService) Get(ctx context.Context, id string, completion Completion[Credentials]) *Task[Credentials] {
	return Go(ctx, func(ctx context.Context) (Credentials, error) {
		return s.get(ctx, id)
	}, completion)
}

func (s *CredentialsService) Create(ctx context.Context, req CreateCredentialsRequest, completion Completion[Credentials]) *Task[Credentials] {
	return Go(ctx, func(ctx context.Context) (Credentials, error) {
		return s.create(ctx, req)
	}, completion)
}

func (s *CredentialsService) Update(ctx context.Context, req UpdateCredentialsRequest, completion Completion[Credentials]) *Task[Credentials] {
	return Go(ctx, func(ctx context.Context) (Credentials, error) {
		return s.update(ctx, req)
	}, completion)
}

func (s *CredentialsService) Delete(ctx context.Context, id string, completion Completion[struct{}]) *Task[struct{}] {
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.command(ctx, "credentials_delete", http.MethodDelete, id, "", nil, nil)
	}, completion)
}

func (s *CredentialsService) Refresh(ctx context.Context, req RefreshCredentialsRequest, completion Completion[struct{}]) *Task[struct{}] {
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		if req.RefreshableItems.IsEmpty() {
			return struct{}{}, s.mapError(errNoRefreshableItems(req.ID))
		}
		query := url.Values{}
		if items := req.RefreshableItems.queryValues(); len(items) > 0 {
			query["items"] = items
		}
		if req.Authenticate {
			query.Set("authenticate", "true")
		}
		if req.OptIn {
			query.Set("optIn", "true")
		}
		return struct{}{}, s.command(ctx, "credentials_refresh", http.MethodPost, req.ID, "refresh", nil, query)
	}, completion)
}

func (s *CredentialsService) Authenticate(ctx context.Context, id string, completion Completion[struct{}]) *Task[struct{}] {
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.command(ctx, "credentials_authenticate", http.MethodPost, id, "authenticate", nil, nil)
	}, completion)
}

func (s *CredentialsService) AddSupplementalInformation(
	ctx context.Context,
	id string,
	information map[string]string,
	completion Completion[struct{}],
) *Task[struct{}] {
	body := RESTSupplementalInformationRequest{Information: cloneStringMap(information)}
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.command(ctx, "credentials_supplemental_information", http.MethodPost, id, "supplemental-information", body, nil)
	}, completion)
}

// CancelSupplementalInformation submits an empty information map to the
// supplemental information endpoint; the platform has no dedicated cancel
// route.
func (s *CredentialsService) CancelSupplementalInformation(ctx context.Context, id string, completion Completion[struct{}]) *Task[struct{}] {
	body := RESTSupplementalInformationRequest{Information: map[string]string{}}
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.command(ctx, "credentials_cancel_supplemental_information", http.MethodPost, id, "supplemental-information", body, nil)
	}, completion)
}

func (s *CredentialsService) Enable(ctx context.Context, id string, completion Completion[struct{}]) *Task[struct{}] {
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.command(ctx, "credentials_enable", http.MethodPost, id, "enable", nil, nil)
	}, completion)
}

func (s *CredentialsService) Disable(ctx context.Context, id string, completion Completion[struct{}]) *Task[struct{}] {
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.command(ctx, "credentials_disable", http.MethodPost, id, "disable", nil, nil)
	}, completion)
}

// ThirdPartyCallback relays the state and parameters of a third-party
// redirect verbatim.
func (s *CredentialsService) ThirdPartyCallback(
	ctx context.Context,
	state string,
	parameters map[string]string,
	completion Completion[struct{}],
) *Task[struct{}] {
	body := RESTCallbackRelayedRequest{State: state, Parameters: cloneStringMap(parameters)}
	return Go(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.thirdPartyCallback(ctx, body)
	}, completion)
}

// QRCode returns the raw image bytes served for the credentials.
func (s *CredentialsService) QRCode(ctx context.Context, id string, completion Completion[[]byte]) *Task[[]byte] {
	return Go(ctx, func(ctx context.Context) ([]byte, error) {
		return s.qrCode(ctx, id)
	}, completion)
}

func (s *CredentialsService) list(ctx context.Context) (credentials []Credentials, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		fields["count"] = len(credentials)
		s.instr.observeOperation(ctx, startedAt, "credentials_list", err, fields)
	}()

	res, err := s.client.Do(ctx, RESTRequest{Method: http.MethodGet, Path: credentialsBasePath + "/list"})
	if err != nil {
		return nil, s.mapError(err)
	}
	credentials, err = DecodeCredentialsList(res.Body)
	if err != nil {
		return nil, s.mapError(err)
	}
	s.notifyObserver(ctx, credentials...)
	return credentials, nil
}

func (s *CredentialsService) get(ctx context.Context, id string) (credentials Credentials, err error) {
	startedAt := time.Now().UTC()
	id = strings.TrimSpace(id)
	fields := map[string]any{"credentials_id": id}
	defer func() {
		if credentials.ProviderID != "" {
			fields["provider_id"] = credentials.ProviderID
		}
		s.instr.observeOperation(ctx, startedAt, "credentials_get", err, fields)
	}()

	if id == "" {
		return Credentials{}, s.mapError(badInputError("core: credentials id is required", nil))
	}
	res, err := s.client.Do(ctx, RESTRequest{Method: http.MethodGet, Path: credentialsPath(id, "")})
	if err != nil {
		return Credentials{}, s.mapError(err)
	}
	credentials, err = DecodeCredentials(res.Body)
	if err != nil {
		return Credentials{}, s.mapError(err)
	}
	s.notifyObserver(ctx, credentials)
	return credentials, nil
}

func (s *CredentialsService) create(ctx context.Context, req CreateCredentialsRequest) (credentials Credentials, err error) {
	startedAt := time.Now().UTC()
	providerID := strings.TrimSpace(req.ProviderID)
	fields := map[string]any{"provider_id": providerID}
	defer func() {
		if credentials.ID != "" {
			fields["credentials_id"] = credentials.ID
		}
		s.instr.observeOperation(ctx, startedAt, "credentials_create", err, fields)
	}()

	if providerID == "" {
		return Credentials{}, s.mapError(badInputError("core: provider id is required", nil))
	}
	if req.RefreshableItems.IsEmpty() {
		return Credentials{}, s.mapError(errNoRefreshableItems(""))
	}
	query := url.Values{}
	if items := req.RefreshableItems.queryValues(); len(items) > 0 {
		query["items"] = items
	}
	res, err := s.client.Do(ctx, RESTRequest{
		Method: http.MethodPost,
		Path:   credentialsBasePath,
		Body: RESTCreateCredentialsRequest{
			ProviderName: providerID,
			Fields:       cloneStringMap(req.Fields),
			CallbackURI:  strings.TrimSpace(req.CallbackURI),
			AppURI:       strings.TrimSpace(req.AppURI),
		},
		Query: query,
	})
	if err != nil {
		return Credentials{}, s.mapError(err)
	}
	credentials, err = DecodeCredentials(res.Body)
	if err != nil {
		return Credentials{}, s.mapError(err)
	}
	s.notifyObserver(ctx, credentials)
	return credentials, nil
}

func (s *CredentialsService) update(ctx context.Context, req UpdateCredentialsRequest) (credentials Credentials, err error) {
	startedAt := time.Now().UTC()
	id := strings.TrimSpace(req.ID)
	providerID := strings.TrimSpace(req.ProviderID)
	fields := map[string]any{"credentials_id": id, "provider_id": providerID}
	defer func() {
		s.instr.observeOperation(ctx, startedAt, "credentials_update", err, fields)
	}()

	if id == "" {
		return Credentials{}, s.mapError(badInputError("core: credentials id is required", nil))
	}
	if providerID == "" {
		return Credentials{}, s.mapError(badInputError("core: provider id is required", map[string]any{"credentials_id": id}))
	}
	res, err := s.client.Do(ctx, RESTRequest{
		Method: http.MethodPut,
		Path:   credentialsPath(id, ""),
		Body: RESTCreateCredentialsRequest{
			ProviderName: providerID,
			Fields:       cloneStringMap(req.Fields),
			CallbackURI:  strings.TrimSpace(req.CallbackURI),
			AppURI:       strings.TrimSpace(req.AppURI),
		},
	})
	if err != nil {
		return Credentials{}, s.mapError(err)
	}
	credentials, err = DecodeCredentials(res.Body)
	if err != nil {
		return Credentials{}, s.mapError(err)
	}
	s.notifyObserver(ctx, credentials)
	return credentials, nil
}

// command runs an operation whose success carries no payload.
func (s *CredentialsService) command(
	ctx context.Context,
	operation string,
	method string,
	id string,
	action string,
	body any,
	query url.Values,
) (err error) {
	startedAt := time.Now().UTC()
	id = strings.TrimSpace(id)
	fields := map[string]any{"credentials_id": id}
	for key, values := range query {
		fields["query_"+strings.ToLower(key)] = strings.Join(values, ",")
	}
	defer func() {
		s.instr.observeOperation(ctx, startedAt, operation, err, fields)
	}()

	if id == "" {
		return s.mapError(badInputError("core: credentials id is required", map[string]any{"operation": operation}))
	}
	_, err = s.client.Do(ctx, RESTRequest{
		Method: method,
		Path:   credentialsPath(id, action),
		Body:   body,
		Query:  query,
	})
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *CredentialsService) thirdPartyCallback(ctx context.Context, body RESTCallbackRelayedRequest) (err error) {
	startedAt := time.Now().UTC()
	body.State = strings.TrimSpace(body.State)
	fields := map[string]any{"parameter_count": len(body.Parameters)}
	defer func() {
		s.instr.observeOperation(ctx, startedAt, "credentials_third_party_callback", err, fields)
	}()

	if body.State == "" {
		return s.mapError(badInputError("core: third-party callback state is required", nil))
	}
	_, err = s.client.Do(ctx, RESTRequest{
		Method: http.MethodPost,
		Path:   credentialsBasePath + "/third-party/callback/relayed",
		Body:   body,
	})
	if err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *CredentialsService) qrCode(ctx context.Context, id string) (image []byte, err error) {
	startedAt := time.Now().UTC()
	id = strings.TrimSpace(id)
	fields := map[string]any{"credentials_id": id}
	defer func() {
		fields["bytes"] = len(image)
		s.instr.observeOperation(ctx, startedAt, "credentials_qr_code", err, fields)
	}()

	if id == "" {
		return nil, s.mapError(badInputError("core: credentials id is required", nil))
	}
	res, err := s.client.Do(ctx, RESTRequest{
		Method: http.MethodGet,
		Path:   credentialsPath(id, "qr"),
		Accept: acceptImagePNG,
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return append([]byte(nil), res.Body...), nil
}

func (s *CredentialsService) notifyObserver(ctx context.Context, credentials ...Credentials) {
	if s.observer == nil || len(credentials) == 0 {
		return
	}
	if err := s.observer.ObserveCredentials(ctx, credentials); err != nil {
		s.instr.logError(ctx, "credentials observer failed", map[string]any{
			"error": err.Error(),
			"count": len(credentials),
		})
	}
}

func (s *CredentialsService) mapError(err error) error {
	if err == nil {
		return nil
	}
	if s == nil || s.errorMapper == nil {
		return err
	}
	mapped := s.errorMapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func credentialsPath(id string, action string) string {
	path := credentialsBasePath + "/" + url.PathEscape(id)
	if action != "" {
		path += "/" + action
	}
	return path
}
