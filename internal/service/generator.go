package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/vaultpass/keysmith-go/internal/crypto"
	"github.com/vaultpass/keysmith-go/internal/entropy"
	"github.com/vaultpass/keysmith-go/internal/model"
)

const defaultPasswordLength = 16

var (
	ErrAPIKeyRequired    = errors.New("an entropy service API key is required")
	ErrRemoteUnavailable = errors.New("remote password generation is not configured")
)

// Recorder persists generation audit events.
type Recorder interface {
	Record(ctx context.Context, e model.GenerationEvent) error
}

// NopRecorder discards events. It is used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, model.GenerationEvent) error { return nil }

// PasswordListener receives the outcome of an asynchronous password request.
// Exactly one method is called, once.
type PasswordListener interface {
	OnGenerated(password string)
	OnFailure(message string, err error)
}

// KeyPairListener receives the outcome of an asynchronous key-pair request.
// Exactly one method is called, once.
type KeyPairListener interface {
	OnGenerated(kp *crypto.KeyPair)
	OnFailure(message string, err error)
}

// GeneratorService handles password and key-pair generation business logic.
type GeneratorService struct {
	src           *crypto.Source
	remote        *entropy.Generator
	keys          *crypto.KeyPairGenerator
	recorder      Recorder
	defaultAPIKey string
	logger        *slog.Logger
}

// GeneratorDeps wires a GeneratorService. Remote and Recorder are optional.
type GeneratorDeps struct {
	Source        *crypto.Source
	Remote        *entropy.Generator
	Recorder      Recorder
	DefaultAPIKey string
	Logger        *slog.Logger
}

// NewGeneratorService creates a new GeneratorService.
func NewGeneratorService(deps GeneratorDeps) *GeneratorService {
	if deps.Source == nil {
		deps.Source = crypto.DefaultSource()
	}
	if deps.Recorder == nil {
		deps.Recorder = NopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &GeneratorService{
		src:           deps.Source,
		remote:        deps.Remote,
		keys:          crypto.NewKeyPairGenerator(deps.Source),
		recorder:      deps.Recorder,
		defaultAPIKey: deps.DefaultAPIKey,
		logger:        deps.Logger,
	}
}

// SecureRandomPassword generates a password locally. An empty symbols
// string selects crypto.StandardSymbols.
func (s *GeneratorService) SecureRandomPassword(length int, symbols string) (string, error) {
	spec := crypto.PasswordSpec{Length: length}
	if symbols != "" {
		spec.Alphabet = []rune(symbols)
	}
	return crypto.GeneratePassword(s.src, spec)
}

// RandomOrgPassword requests a true-random password and reports to l from a
// background goroutine. An empty apiKey falls back to the configured one.
// Precondition failures are reported before it returns.
func (s *GeneratorService) RandomOrgPassword(ctx context.Context, length int, apiKey string, l PasswordListener) {
	if err := crypto.ValidateLength(length); err != nil {
		l.OnFailure("Invalid length.", err)
		return
	}
	if s.remote == nil {
		l.OnFailure("Remote generation unavailable.", ErrRemoteUnavailable)
		return
	}
	apiKey = s.apiKeyOrDefault(apiKey)
	if apiKey == "" {
		l.OnFailure("API key required.", ErrAPIKeyRequired)
		return
	}

	ch := s.remote.GenerateAsync(ctx, length, apiKey)
	go func() {
		res := <-ch
		if res.Err != nil {
			l.OnFailure(failureMessage(res.Err), res.Err)
			return
		}
		l.OnGenerated(res.Password)
	}()
}

// RSAKeyPair generates a key pair in the background and reports to l.
func (s *GeneratorService) RSAKeyPair(ctx context.Context, l KeyPairListener, size crypto.KeySize) {
	ch := s.keys.GenerateAsync(ctx, size)
	go func() {
		res := <-ch
		if res.Err != nil {
			l.OnFailure("Key pair generation failed.", res.Err)
			return
		}
		l.OnGenerated(res.KeyPair)
	}()
}

// Generate produces a local password based on the given request.
func (s *GeneratorService) Generate(ctx context.Context, clientID string, req model.GenerateRequest) (model.GenerateResponse, error) {
	length := intOrDefault(req.Length, defaultPasswordLength)

	alphabet, err := alphabetFor(req)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	password, err := crypto.GeneratePassword(s.src, crypto.PasswordSpec{Length: length, Alphabet: alphabet})
	s.audit(ctx, model.GenerationEvent{ClientID: clientID, Kind: model.KindLocalPassword, Length: length}, err)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	return model.GenerateResponse{
		Password: password,
		Length:   length,
		Source:   model.SourceLocal,
	}, nil
}

// GenerateRemote produces a password from the entropy service and waits for it.
func (s *GeneratorService) GenerateRemote(ctx context.Context, clientID string, req model.RemoteGenerateRequest) (model.GenerateResponse, error) {
	length := intOrDefault(req.Length, defaultPasswordLength)
	if err := crypto.ValidateLength(length); err != nil {
		return model.GenerateResponse{}, err
	}
	if s.remote == nil {
		return model.GenerateResponse{}, ErrRemoteUnavailable
	}

	apiKey := s.apiKeyOrDefault(req.APIKey)
	if apiKey == "" {
		return model.GenerateResponse{}, ErrAPIKeyRequired
	}

	password, err := s.remote.Generate(ctx, length, apiKey)
	s.audit(ctx, model.GenerationEvent{ClientID: clientID, Kind: model.KindRemotePassword, Length: length}, err)
	if err != nil {
		return model.GenerateResponse{}, err
	}

	return model.GenerateResponse{
		Password: password,
		Length:   length,
		Source:   model.SourceRemote,
	}, nil
}

// GenerateKeyPair produces an RSA key pair and encodes it for transport.
func (s *GeneratorService) GenerateKeyPair(ctx context.Context, clientID string, req model.KeyPairRequest) (model.KeyPairResponse, error) {
	size, err := crypto.ParseKeySize(req.KeySize)
	if err != nil {
		return model.KeyPairResponse{}, err
	}

	kp, err := s.keys.Generate(ctx, size)
	s.audit(ctx, model.GenerationEvent{ClientID: clientID, Kind: model.KindKeyPair, KeySize: int(size)}, err)
	if err != nil {
		return model.KeyPairResponse{}, err
	}

	pub, err := kp.PublicKeyPEM()
	if err != nil {
		return model.KeyPairResponse{}, err
	}
	authorized, err := kp.AuthorizedKey()
	if err != nil {
		return model.KeyPairResponse{}, err
	}

	return model.KeyPairResponse{
		KeySize:       int(size),
		PublicKeyPEM:  string(pub),
		PrivateKeyPEM: string(kp.PrivateKeyPEM()),
		AuthorizedKey: authorized,
	}, nil
}

// audit records e with an outcome derived from err. Failures are logged only.
func (s *GeneratorService) audit(ctx context.Context, e model.GenerationEvent, err error) {
	e.ID = uuid.NewString()
	e.Outcome = model.OutcomeSuccess
	if err != nil {
		e.Outcome = model.OutcomeFailure
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if recErr := s.recorder.Record(ctx, e); recErr != nil {
		s.logger.Warn("recording generation event failed", "kind", e.Kind, "error", recErr)
	}
}

func (s *GeneratorService) apiKeyOrDefault(key string) string {
	if key != "" {
		return key
	}
	return s.defaultAPIKey
}

func intOrDefault(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func alphabetFor(req model.GenerateRequest) ([]rune, error) {
	if req.Symbols != "" {
		return []rune(req.Symbols), nil
	}
	opts := crypto.AlphabetOptions{
		Uppercase: boolOrDefault(req.Uppercase, true),
		Lowercase: boolOrDefault(req.Lowercase, true),
		Numbers:   boolOrDefault(req.Numbers, true),
		Symbols:   boolOrDefault(req.Special, true),
	}
	return opts.Alphabet()
}

func failureMessage(err error) string {
	var svcErr *entropy.ServiceError
	switch {
	case errors.Is(err, entropy.ErrNetworkFailure):
		return "Entropy service unreachable."
	case errors.As(err, &svcErr) && svcErr.Message != "":
		return "Error response from entropy service: " + svcErr.Message
	case errors.As(err, &svcErr):
		return fmt.Sprintf("Response code %d", svcErr.StatusCode)
	default:
		return err.Error()
	}
}

// boolOrDefault returns the dereferenced pointer value, or the fallback if nil.
func boolOrDefault(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}
