package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/pennsieve/account-provisioner/internal/config"
	"github.com/pennsieve/account-provisioner/internal/container"
	"github.com/pennsieve/account-provisioner/internal/enrollment"
	"github.com/pennsieve/account-provisioner/internal/errors"
	"github.com/pennsieve/account-provisioner/internal/logging"
	"github.com/pennsieve/account-provisioner/internal/models"
	"github.com/pennsieve/account-provisioner/internal/provisioning"
	"github.com/pennsieve/account-provisioner/internal/service"
	"github.com/pennsieve/account-provisioner/internal/store_dynamodb"
)

const (
	DetailTypeProvisionRequested  = "AccountProvisionRequested"
	DetailTypeEnrollmentRequested = "AccountEnrollmentRequested"
	DetailTypeRunStatusCheck      = "RunStatusCheck"
)

var logger = logging.Default

func init() {
	logger.Info("init()")
}

type AccountRequest struct {
	AccountId string `json:"accountId"`
}

// RunStatusRequest names a run directly, or an account whose newest run (of Kind,
// when set) is checked.
type RunStatusRequest struct {
	RunId     string         `json:"runId,omitempty"`
	AccountId string         `json:"accountId,omitempty"`
	Kind      models.RunKind `json:"kind,omitempty"`
}

// RunResponse is returned to synchronous callers so they can schedule RunStatusCheck.
type RunResponse struct {
	RunId     string         `json:"runId,omitempty"`
	Kind      models.RunKind `json:"kind,omitempty"`
	AccountId string         `json:"accountId,omitempty"`
	Handle    string         `json:"handle,omitempty"`
	Status    string         `json:"status,omitempty"`
	Attempts  int            `json:"attempts,omitempty"`
	Rejection string         `json:"rejection,omitempty"`
}

func responseFrom(run models.Run) RunResponse {
	return RunResponse{
		RunId:     run.RunId,
		Kind:      run.Kind,
		AccountId: run.AccountId,
		Handle:    run.Handle,
		Status:    run.Status,
		Attempts:  run.Attempts,
		Rejection: run.Rejection,
	}
}

// ProvisioningEventHandler is the Lambda entry point. Each invocation performs one
// step and returns; polling is driven by repeated RunStatusCheck events.
func ProvisioningEventHandler(ctx context.Context, event events.CloudWatchEvent) (RunResponse, error) {
	handlerName := "ProvisioningEventHandler"
	log := logger
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		log = log.With(slog.String("requestID", lc.AwsRequestID))
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error(errors.HandlerError(handlerName, err))
		return RunResponse{}, err
	}

	c, err := container.NewContainer(ctx)
	if err != nil {
		log.Error(errors.HandlerError(handlerName, errors.ErrAWSConfig), slog.String("error", err.Error()))
		return RunResponse{}, fmt.Errorf("%w: %w", errors.ErrAWSConfig, err)
	}
	if err := cfg.ApplySSM(ctx, c.SSMClient()); err != nil {
		log.Error(errors.HandlerError(handlerName, err))
		return RunResponse{}, err
	}
	c.SetConfig(cfg.RunsTable)

	h := NewEventHandler(cfg, c)
	h.Logger = log
	return h.Handle(ctx, event)
}

type EventHandler struct {
	Config config.Config
	Deps   container.DependencyContainer
	Logger *slog.Logger
}

func NewEventHandler(cfg config.Config, deps container.DependencyContainer) *EventHandler {
	return &EventHandler{Config: cfg, Deps: deps, Logger: logger}
}

func (h *EventHandler) Handle(ctx context.Context, event events.CloudWatchEvent) (RunResponse, error) {
	h.Logger.Info("received event",
		slog.String("source", event.Source),
		slog.String("detailType", event.DetailType))

	switch event.DetailType {
	case DetailTypeProvisionRequested, DetailTypeEnrollmentRequested, DetailTypeRunStatusCheck:
	default:
		h.Logger.Warn("ignoring event", slog.String("detailType", event.DetailType))
		return RunResponse{}, nil
	}

	store := h.Deps.RunStore()
	if store == nil {
		return RunResponse{}, errors.ErrRunsTableNotConfigured
	}

	switch event.DetailType {
	case DetailTypeProvisionRequested:
		return h.provision(ctx, store, event.Detail)
	case DetailTypeEnrollmentRequested:
		return h.enroll(ctx, store, event.Detail)
	default:
		return h.checkStatus(ctx, store, event.Detail)
	}
}

// provision submits and records the run. The record is what later status checks
// read, so a failed insert fails the invocation even though the product was submitted.
func (h *EventHandler) provision(ctx context.Context, store store_dynamodb.RunStore, detail json.RawMessage) (RunResponse, error) {
	accountId, err := accountIdFrom(detail)
	if err != nil {
		return RunResponse{}, err
	}
	cfg := h.Config
	cfg.TargetAccountId = accountId
	if err := cfg.ValidateProvisioning(); err != nil {
		return RunResponse{}, err
	}

	recorder := service.NewStrictRecorder(store)
	p := provisioning.New(h.Deps.ServiceCatalogClient(), h.Deps.OrganizationsClient(), recorder, cfg)
	p.Logger = h.Logger
	submission, err := p.Submit(ctx, accountId)
	if err != nil {
		h.Logger.Error("provisioning submit failed",
			slog.String("accountId", accountId),
			slog.String("error", err.Error()))
		return RunResponse{}, err
	}

	response := responseFrom(submission.Run)
	if err := recorder.Err(); err != nil {
		h.Logger.Error("provisioning submitted but not recorded",
			slog.String("runId", submission.Run.RunId),
			slog.String("accountId", accountId),
			slog.String("provisionedProductId", submission.Run.Handle),
			slog.String("error", err.Error()))
		return response, err
	}
	return response, nil
}

func (h *EventHandler) enroll(ctx context.Context, store store_dynamodb.RunStore, detail json.RawMessage) (RunResponse, error) {
	accountId, err := accountIdFrom(detail)
	if err != nil {
		return RunResponse{}, err
	}

	recorder := service.NewStrictRecorder(store)
	e := enrollment.New(h.Deps.OrganizationsClient(), recorder, h.Config)
	e.Logger = h.Logger
	invitation := e.Invite(ctx, accountId)

	response := responseFrom(invitation.Run)
	if err := recorder.Err(); err != nil {
		h.Logger.Error("invitation sent but not recorded",
			slog.String("runId", invitation.Run.RunId),
			slog.String("accountId", accountId),
			slog.String("handshakeId", invitation.HandshakeId),
			slog.String("error", err.Error()))
		return response, err
	}
	if invitation.Rejection != nil && e.StopOnRejection {
		return response, fmt.Errorf("%w: %w", errors.ErrInviteRejected, invitation.Rejection)
	}
	return response, nil
}

// checkStatus runs a single probe for the run and records what it saw. A probe
// error leaves the record untouched.
func (h *EventHandler) checkStatus(ctx context.Context, store store_dynamodb.RunStore, detail json.RawMessage) (RunResponse, error) {
	var request RunStatusRequest
	if err := json.Unmarshal(detail, &request); err != nil {
		return RunResponse{}, fmt.Errorf("%w: %w", errors.ErrUnmarshaling, err)
	}

	run, err := h.resolveRun(ctx, store, request)
	if err != nil {
		return RunResponse{}, err
	}

	var status string
	switch run.Kind {
	case models.RunKindProvision:
		p := provisioning.New(h.Deps.ServiceCatalogClient(), h.Deps.OrganizationsClient(), service.NopRecorder{}, h.Config)
		status, err = p.Status(ctx, run.Handle)
	case models.RunKindEnroll:
		e := enrollment.New(h.Deps.OrganizationsClient(), service.NopRecorder{}, h.Config)
		status, err = e.JoinedMethod(ctx, run.AccountId)
	default:
		return responseFrom(run), fmt.Errorf("%w: %s", errors.ErrUnsupportedRunKind, run.Kind)
	}
	if err != nil {
		h.Logger.Warn("status probe failed",
			slog.String("runId", run.RunId),
			slog.String("error", err.Error()))
		return responseFrom(run), err
	}

	attempts := run.Attempts + 1
	if err := store.UpdateStatus(ctx, run.RunId, status, attempts); err != nil {
		return responseFrom(run), err
	}
	run.Status = status
	run.Attempts = attempts
	h.Logger.Info("run status checked",
		slog.String("runId", run.RunId),
		slog.String("kind", string(run.Kind)),
		slog.String("status", status),
		slog.Int("attempts", attempts))
	return responseFrom(run), nil
}

// resolveRun loads the run by id, or the newest run for the account.
func (h *EventHandler) resolveRun(ctx context.Context, store store_dynamodb.RunStore, request RunStatusRequest) (models.Run, error) {
	if request.RunId != "" {
		return store.GetById(ctx, request.RunId)
	}
	if request.AccountId == "" {
		return models.Run{}, fmt.Errorf("%w: runId or accountId is required", errors.ErrUnsupportedEvent)
	}

	runs, err := store.GetByAccountId(ctx, request.AccountId)
	if err != nil {
		return models.Run{}, err
	}
	for _, run := range runs {
		if request.Kind == "" || run.Kind == request.Kind {
			return run, nil
		}
	}
	return models.Run{}, fmt.Errorf("%w: no run for account %s", errors.ErrNoRecordsFound, request.AccountId)
}

func accountIdFrom(detail json.RawMessage) (string, error) {
	var request AccountRequest
	if err := json.Unmarshal(detail, &request); err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrUnmarshaling, err)
	}
	if request.AccountId == "" {
		return "", fmt.Errorf("%w: accountId is required", errors.ErrUnsupportedEvent)
	}
	return request.AccountId, nil
}
