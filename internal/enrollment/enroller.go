// Package enrollment invites an existing account into the organization and waits
// for it to join.
package enrollment

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/organizations/types"
	"github.com/google/uuid"
	"github.com/pennsieve/account-provisioner/internal/clients"
	"github.com/pennsieve/account-provisioner/internal/config"
	"github.com/pennsieve/account-provisioner/internal/errors"
	"github.com/pennsieve/account-provisioner/internal/logging"
	"github.com/pennsieve/account-provisioner/internal/models"
	"github.com/pennsieve/account-provisioner/internal/poller"
	"github.com/pennsieve/account-provisioner/internal/service"
)

// JoinedMethodInvited is the only status that ends enrollment polling. There is
// no failure terminal state.
const JoinedMethodInvited = string(types.AccountJoinedMethodInvited)

const RunStatusRejected = "REJECTED"

var IsJoined = poller.In(JoinedMethodInvited)

// Invitation is the result of the submit step. Rejection is set when Organizations
// refused the request; HandshakeId is empty in that case.
type Invitation struct {
	Run         models.Run
	HandshakeId string
	Rejection   *errors.Rejection
}

type Outcome struct {
	RunId        string
	HandshakeId  string
	Rejection    *errors.Rejection
	JoinedMethod string
	Attempts     int
}

func (o Outcome) Joined() bool {
	return o.JoinedMethod == JoinedMethodInvited
}

type Enroller struct {
	Organizations   clients.OrganizationsAPI
	Poller          *poller.Poller
	Recorder        service.Recorder
	Notes           string
	StopOnRejection bool
	Logger          *slog.Logger
}

func New(org clients.OrganizationsAPI, recorder service.Recorder, cfg config.Config) *Enroller {
	if recorder == nil {
		recorder = service.NopRecorder{}
	}
	return &Enroller{
		Organizations:   org,
		Poller:          poller.New(cfg.EnrollInterval),
		Recorder:        recorder,
		Notes:           cfg.InviteNotes,
		StopOnRejection: cfg.StopOnRejection,
		Logger:          logging.Default,
	}
}

// Invite sends the invitation. A refusal is classified, logged and returned in the
// Invitation; it is never returned as an error.
func (e *Enroller) Invite(ctx context.Context, accountId string) Invitation {
	runId := uuid.NewString()
	response, err := e.Organizations.InviteAccountToOrganization(ctx, &organizations.InviteAccountToOrganizationInput{
		Target: &types.HandshakeParty{
			Id:   aws.String(accountId),
			Type: types.HandshakePartyTypeAccount,
		},
		Notes: aws.String(e.Notes),
	})
	if err != nil {
		rejection := errors.ClassifyRejection(err)
		e.Logger.Warn(rejection.Kind.Label(),
			slog.String("accountId", accountId),
			slog.String("kind", string(rejection.Kind)),
			slog.String("code", rejection.Code),
			slog.String("message", rejection.Message))
		run := e.Recorder.Started(ctx, models.Run{
			RunId:     runId,
			Kind:      models.RunKindEnroll,
			AccountId: accountId,
			Status:    RunStatusRejected,
			Rejection: string(rejection.Kind),
		})
		return Invitation{Run: run, Rejection: rejection}
	}

	var handshakeId, state string
	if response.Handshake != nil {
		handshakeId = aws.ToString(response.Handshake.Id)
		state = string(response.Handshake.State)
	}
	run := e.Recorder.Started(ctx, models.Run{
		RunId:     runId,
		Kind:      models.RunKindEnroll,
		AccountId: accountId,
		Handle:    handshakeId,
	})
	e.Logger.Info("invitation sent",
		slog.String("runId", run.RunId),
		slog.String("accountId", accountId),
		slog.String("handshakeId", handshakeId),
		slog.String("handshakeState", state))
	return Invitation{Run: run, HandshakeId: handshakeId}
}

// JoinedMethod is a single DescribeAccount probe.
func (e *Enroller) JoinedMethod(ctx context.Context, accountId string) (string, error) {
	response, err := e.Organizations.DescribeAccount(ctx, &organizations.DescribeAccountInput{
		AccountId: aws.String(accountId),
	})
	if err != nil {
		var notFound *types.AccountNotFoundException
		if stderrors.As(err, &notFound) {
			return "", fmt.Errorf("%w: %s: %w", errors.ErrAccountNotFound, accountId, err)
		}
		return "", fmt.Errorf("error checking if account has joined the organization: %w", err)
	}
	if response.Account == nil {
		return "", fmt.Errorf("%w: %s", errors.ErrAccountNotFound, accountId)
	}
	return string(response.Account.JoinedMethod), nil
}

// WaitForJoin polls DescribeAccount until the account reports it joined by invitation.
func (e *Enroller) WaitForJoin(ctx context.Context, run models.Run) (poller.Result, error) {
	pl := *e.Poller
	pl.OnStatus = func(ctx context.Context, status string, attempt int) {
		e.Recorder.Observed(ctx, run.RunId, status, attempt)
	}
	return pl.Poll(ctx, func(ctx context.Context) (string, error) {
		return e.JoinedMethod(ctx, run.AccountId)
	}, IsJoined)
}

// Run invites the account and waits for it to join. Polling starts even after a
// rejection unless StopOnRejection is set.
func (e *Enroller) Run(ctx context.Context, accountId string) (Outcome, error) {
	invitation := e.Invite(ctx, accountId)
	outcome := Outcome{
		RunId:       invitation.Run.RunId,
		HandshakeId: invitation.HandshakeId,
		Rejection:   invitation.Rejection,
	}

	if invitation.Rejection != nil && e.StopOnRejection {
		return outcome, fmt.Errorf("%w: %w", errors.ErrInviteRejected, invitation.Rejection)
	}

	result, err := e.WaitForJoin(ctx, invitation.Run)
	outcome.JoinedMethod = result.Status
	outcome.Attempts = result.Attempts
	if err != nil {
		return outcome, err
	}

	e.Logger.Info("account joined the organization",
		slog.String("runId", outcome.RunId),
		slog.String("accountId", accountId),
		slog.Int("attempts", outcome.Attempts))
	return outcome, nil
}
