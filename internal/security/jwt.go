package security

import (
	"airunote/config"
	"airunote/internal/model"
	"airunote/internal/util"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	PrincipalContextKey contextKey = "principal"
)

// Claims : личность, которую выдаёт внешний сервис аутентификации
type Claims struct {
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	OrgIDs []string `json:"org_ids"`
	jwt.RegisteredClaims
}

type JWTService struct {
	*config.JWTConfig
}

func NewJWTService(cfg *config.JWTConfig) *JWTService {
	return &JWTService{cfg}
}

// GenerateAccessToken : подписанный токен для принципала. В продакшене токены выпускает внешний сервис,
// здесь метод нужен для локальной разработки и тестов
func (service *JWTService) GenerateAccessToken(principal *model.Principal) (string, error) {
	timeDuration, err := time.ParseDuration(service.AccessTokenTTL)
	if err != nil {
		return "", util.LogError("ошибка парсинга", err)
	}

	claims := Claims{
		UserID: principal.UserID,
		Email:  principal.Email,
		OrgIDs: principal.OrgIDs,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(timeDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    service.Issuer,
			Subject:   principal.UserID,
		},
	}

	jwtToken := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	accessToken, err := jwtToken.SignedString([]byte(service.SecretKey))
	if err != nil {
		return "", util.LogError("ошибка подписи токена", err)
	}

	return accessToken, nil
}

func (service *JWTService) ValidateJWT(jwtTokenStr string) (*Claims, error) {
	var claims = &Claims{}

	jwtToken, err := jwt.ParseWithClaims(jwtTokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Header["alg"] != jwt.SigningMethodHS512.Alg() {
			return nil, fmt.Errorf("неверный способ подписи токена: %v", token.Header["alg"])
		}
		return []byte(service.SecretKey), nil
	}, jwt.WithIssuer(service.Issuer))

	if err != nil || !jwtToken.Valid {
		return nil, fmt.Errorf("невалидный токен: %w", err)
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("невалидный токен: нет user_id")
	}

	return claims, nil
}

// JWTMiddleware : проверяет Bearer токен и кладёт принципала в контекст
func JWTMiddleware(jwtService *JWTService) func(handler http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authorizationHeader := request.Header.Get("Authorization")
			if !strings.HasPrefix(authorizationHeader, "Bearer ") {
				util.HandleError(writer, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtService.ValidateJWT(strings.TrimPrefix(authorizationHeader, "Bearer "))
			if err != nil {
				util.Logger.Debug().Err(err).Msg("[JWT] токен отклонён")
				util.HandleError(writer, "невалидный токен", http.StatusUnauthorized)
				return
			}

			principal := &model.Principal{UserID: claims.UserID, Email: claims.Email, OrgIDs: claims.OrgIDs}
			req := request.WithContext(WithPrincipal(request.Context(), principal))
			next.ServeHTTP(writer, req)
		})
	}
}

// OrgMembershipMiddleware : внешний шлюз членства в организации из пути {org_id}.
// Ядро orgId не проверяет, поэтому маршруты организации обязаны стоять за этим middleware
func OrgMembershipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		principal, err := GetPrincipalFromContext(request.Context())
		if err != nil {
			util.HandleError(writer, "unauthorized", http.StatusUnauthorized)
			return
		}

		orgID := chi.URLParam(request, "org_id")
		if orgID == "" || !principal.MemberOf(orgID) {
			util.HandleError(writer, "нет доступа к организации", http.StatusForbidden)
			return
		}

		next.ServeHTTP(writer, request)
	})
}

func WithPrincipal(ctx context.Context, principal *model.Principal) context.Context {
	return context.WithValue(ctx, PrincipalContextKey, principal)
}

func GetPrincipalFromContext(ctx context.Context) (*model.Principal, error) {
	principal, ok := ctx.Value(PrincipalContextKey).(*model.Principal)
	if !ok || principal == nil {
		return nil, fmt.Errorf("пользователь не авторизован")
	}
	return principal, nil
}
