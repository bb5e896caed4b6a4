package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Интервал фонового обновления JWKS.
const jwksRefreshInterval = 15 * time.Minute

var (
	// ErrTokenExpired — срок действия токена истёк.
	ErrTokenExpired = errors.New("срок действия токена истёк")
	// ErrTokenInvalid — токен не прошёл проверку подписи или формата.
	ErrTokenInvalid = errors.New("некорректный токен")
)

// TokenClaims — данные токена backend, нужные сессии.
type TokenClaims struct {
	Subject string
	// ExpiresAt — время истечения; нулевое, если в токене нет exp
	ExpiresAt time.Time
}

// TokenReader читает claims токена, выданного backend при входе.
// С JWKS подпись проверяется; без JWKS токен разбирается без проверки
// подписи (его проверяет backend при каждом запросе), проверяется только exp.
type TokenReader struct {
	jwks   keyfunc.Keyfunc
	issuer string
	logger *slog.Logger
}

// NewTokenReader создаёт TokenReader. jwksURL пустой — без проверки подписи.
func NewTokenReader(jwksURL, issuer string, httpClient *http.Client, logger *slog.Logger) (*TokenReader, error) {
	if jwksURL == "" {
		return NewTokenReaderWithKeyfunc(nil, issuer, logger), nil
	}

	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:                    httpClient,
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           jwksRefreshInterval,
		RefreshErrorHandler: func(_ context.Context, err error) {
			logger.Error("Ошибка обновления JWKS",
				slog.String("error", err.Error()),
				slog.String("url", jwksURL),
			)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("создание JWKS storage: %w", err)
	}

	k, err := keyfunc.New(keyfunc.Options{
		Storage: storage,
	})
	if err != nil {
		return nil, fmt.Errorf("создание keyfunc: %w", err)
	}

	return NewTokenReaderWithKeyfunc(k, issuer, logger), nil
}

// NewTokenReaderWithKeyfunc создаёт TokenReader с готовой keyfunc (nil — без проверки подписи).
// Используется в тестах для подстановки mock JWKS.
func NewTokenReaderWithKeyfunc(kf keyfunc.Keyfunc, issuer string, logger *slog.Logger) *TokenReader {
	return &TokenReader{
		jwks:   kf,
		issuer: issuer,
		logger: logger.With(slog.String("component", "token_reader")),
	}
}

// Verifies сообщает, проверяется ли подпись токена.
func (tr *TokenReader) Verifies() bool {
	return tr.jwks != nil
}

// Read разбирает токен и возвращает его claims.
func (tr *TokenReader) Read(ctx context.Context, token string) (*TokenClaims, error) {
	var claims jwt.RegisteredClaims

	if tr.jwks == nil {
		if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
		if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
			return nil, ErrTokenExpired
		}
		if tr.issuer != "" && claims.Issuer != tr.issuer {
			return nil, fmt.Errorf("%w: issuer %q", ErrTokenInvalid, claims.Issuer)
		}
		return toTokenClaims(&claims), nil
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"RS256", "ES256"}),
		jwt.WithLeeway(5 * time.Second),
	}
	if tr.issuer != "" {
		opts = append(opts, jwt.WithIssuer(tr.issuer))
	}

	if _, err := jwt.ParseWithClaims(token, &claims, tr.jwks.KeyfuncCtx(ctx), opts...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		tr.logger.Debug("Токен не прошёл проверку",
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return toTokenClaims(&claims), nil
}

func toTokenClaims(c *jwt.RegisteredClaims) *TokenClaims {
	tc := &TokenClaims{Subject: c.Subject}
	if c.ExpiresAt != nil {
		tc.ExpiresAt = c.ExpiresAt.Time
	}
	return tc
}
