package auth_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/edi-app/edi-intake/internal"
	"github.com/edi-app/edi-intake/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAuth(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Suite")
}

const testSecret = "test-secret-0123456789-0123456789-01"

func signToken(secret, subject, email, role string, expiresIn time.Duration) string {
	claims := &auth.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	Expect(err).NotTo(HaveOccurred())
	return signed
}

var _ = Describe("Verifier", func() {
	var verifier *auth.Verifier

	BeforeEach(func() {
		verifier = auth.NewVerifier(testSecret)
	})

	Describe("ParseToken", func() {
		Context("with a valid collector token", func() {
			It("returns the principal from the claims", func() {
				token := signToken(testSecret, "user-42", "collector@edi.example", auth.RoleCollector, time.Hour)

				principal, err := verifier.ParseToken(token)
				Expect(err).NotTo(HaveOccurred())
				Expect(principal.UserID).To(Equal("user-42"))
				Expect(principal.Email).To(Equal("collector@edi.example"))
				Expect(principal.Role).To(Equal(auth.RoleCollector))
				Expect(principal.IsService()).To(BeFalse())
			})
		})

		Context("with a service-role token", func() {
			It("marks the principal as service", func() {
				token := signToken(testSecret, "service", "", auth.RoleService, time.Hour)

				principal, err := verifier.ParseToken(token)
				Expect(err).NotTo(HaveOccurred())
				Expect(principal.IsService()).To(BeTrue())
			})
		})

		Context("with an expired token", func() {
			It("returns the expiry error", func() {
				token := signToken(testSecret, "user-42", "collector@edi.example", auth.RoleCollector, -time.Minute)

				principal, err := verifier.ParseToken(token)
				Expect(principal).To(BeNil())
				Expect(err).To(Equal(apperrors.ErrTokenExpired))
			})
		})

		Context("with a token signed by another secret", func() {
			It("rejects it as invalid", func() {
				token := signToken("another-secret-belonging-to-nobody!!", "user-42", "", auth.RoleAdmin, time.Hour)

				principal, err := verifier.ParseToken(token)
				Expect(principal).To(BeNil())
				Expect(err).To(Equal(apperrors.ErrInvalidToken))
			})
		})

		Context("with garbage input", func() {
			It("rejects it as invalid", func() {
				principal, err := verifier.ParseToken("not.a.token")
				Expect(principal).To(BeNil())
				Expect(err).To(Equal(apperrors.ErrInvalidToken))
			})
		})
	})

	Describe("CapabilityFor", func() {
		It("mints the elevated capability only for service principals", func() {
			service := &auth.Principal{UserID: "service", Role: auth.RoleService}
			admin := &auth.Principal{UserID: "user-1", Role: auth.RoleAdmin}
			collector := &auth.Principal{UserID: "user-2", Role: auth.RoleCollector}

			Expect(auth.CapabilityFor(service).Elevated()).To(BeTrue())
			Expect(auth.CapabilityFor(admin).Elevated()).To(BeFalse())
			Expect(auth.CapabilityFor(collector).Elevated()).To(BeFalse())
			Expect(auth.CapabilityFor(nil).Elevated()).To(BeFalse())
		})
	})

	Describe("context helpers", func() {
		It("round-trips the principal", func() {
			principal := &auth.Principal{UserID: "user-7", Email: "a@b.c", Role: auth.RoleCollector}
			ctx := auth.ContextWithPrincipal(context.Background(), principal)

			got, ok := auth.PrincipalFromContext(ctx)
			Expect(ok).To(BeTrue())
			Expect(got).To(Equal(principal))
		})

		It("reports absence of a principal", func() {
			_, ok := auth.PrincipalFromContext(context.Background())
			Expect(ok).To(BeFalse())
		})

		It("defaults to the zero capability", func() {
			capability := auth.CapabilityFromContext(context.Background())
			Expect(capability.Elevated()).To(BeFalse())
		})

		It("round-trips the elevated capability", func() {
			service := &auth.Principal{UserID: "service", Role: auth.RoleService}
			ctx := auth.ContextWithCapability(context.Background(), auth.CapabilityFor(service))

			Expect(auth.CapabilityFromContext(ctx).Elevated()).To(BeTrue())
		})
	})
})
