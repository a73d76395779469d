package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/edi-app/edi-intake/internal/applicant"
	applicantPostgres "github.com/edi-app/edi-intake/internal/applicant/postgres"
	"github.com/edi-app/edi-intake/internal/auth"
	applicantDatamodel "github.com/edi-app/edi-intake/internal/core/datamodel/applicant"
	"github.com/edi-app/edi-intake/internal/core/events"
	"github.com/edi-app/edi-intake/internal/identity"
	identityPostgres "github.com/edi-app/edi-intake/internal/identity/postgres"
	"github.com/edi-app/edi-intake/internal/policy"
	"github.com/edi-app/edi-intake/internal/sequence"
	sequencePostgres "github.com/edi-app/edi-intake/internal/sequence/postgres"
	"github.com/edi-app/edi-intake/internal/transport"
	"github.com/edi-app/edi-intake/internal/transport/rest"
	"github.com/go-chi/chi"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// sqliteUser mirrors the users table without the postgres-only column
// defaults so sqlite can migrate it.
type sqliteUser struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (sqliteUser) TableName() string {
	return "users"
}

const wiringSecret = "router-wiring-secret-32-bytes-long!!"

var wiringDBSerial int

func mintToken(userID, email, role string) string {
	claims := auth.Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(wiringSecret))
	Expect(err).NotTo(HaveOccurred())
	return signed
}

func intakePayload() applicant.CreateApplicantDTO {
	return applicant.CreateApplicantDTO{
		Region:                   "Oromia",
		Batch:                    "2024-B1",
		Zone:                     "East Shewa",
		Woreda:                   "Adama",
		Kebele:                   "05",
		FirstName:                "Meseret",
		FatherName:               "Tashoma",
		GrandfatherName:          "Alemu",
		DateOfBirth:              "1991-04-18",
		DateCollected:            "2024-06-02",
		Sex:                      applicant.SexFemale,
		ApplicantAddress:         "Adama, Kebele 05",
		HasBusinessLicense:       false,
		EnterpriseCategory:       "micro",
		OwnershipForm:            "soleproprietorship",
		BusinessSector:           "manufacturing",
		NumberOfOwners:           1,
		OwnersNames:              "Meseret Tashoma",
		RegisteredAddress:        "Adama, Kebele 05",
		BusinessPremise:          "rented",
		MaleEmployees:            3,
		FemaleEmployees:          2,
		BusinessCapitalETB:       150000,
		MonthlyRevenueETB:        42000,
		AnnualRevenueLast3:       1400000,
		NetProfitLast3:           260000,
		FinancingRequiredETB:     500000,
		SourceOfRepayment:        "business revenue",
		PurposeOfFunds:           "working capital",
		GuarantorFirstName:       "Abebe",
		GuarantorFatherName:      "Kebede",
		GuarantorGrandfatherName: "Gidey",
		GuarantorPhone:           "+251911234567",
		GuarantorMonthlyIncome:   18000,
		CreditHistory:            "no prior loans",
		CBEAccountNumber:         "1000234567890",
		CBEBranch:                "Adama Main",
		CBECity:                  "Adama",
		ModeOfFinance:            "conventional",
	}
}

var _ = Describe("Router wiring", func() {
	var (
		router         *chi.Mux
		gormDB         *gorm.DB
		seqDB          *sqlx.DB
		collectorToken string
		serviceToken   string
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		var err error
		gormDB, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			TranslateError: true,
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(gormDB.AutoMigrate(&sqliteUser{}, &applicantDatamodel.Applicant{})).To(Succeed())

		wiringDBSerial++
		dsn := fmt.Sprintf("file:restwiring%d?mode=memory&cache=shared&_busy_timeout=5000", wiringDBSerial)
		seqDB, err = sqlx.Open("sqlite3", dsn)
		Expect(err).NotTo(HaveOccurred())
		_, err = seqDB.Exec(`CREATE TABLE IF NOT EXISTS sequences (name TEXT PRIMARY KEY, current_value BIGINT NOT NULL DEFAULT 0)`)
		Expect(err).NotTo(HaveOccurred())

		eventBus := events.NewEventBus(logger)
		engine := policy.NewEngine()

		seqService := sequence.NewService(sequencePostgres.NewSequenceStore(seqDB), sequence.ApplicantCounter, logger)
		Expect(seqService.EnsureCounter(context.Background())).To(Succeed())

		base := transport.NewBaseHandler(logger)

		identityService := identity.NewService(identityPostgres.NewUserRepository(gormDB), eventBus, logger)
		identityHandler := identity.NewHandler(base, identityService)

		applicantService := applicant.NewService(applicantPostgres.NewApplicantRepository(gormDB), seqService, engine, eventBus, logger)
		applicantHandler := applicant.NewHandler(base, applicantService)

		verifier := auth.NewVerifier(wiringSecret)

		sqlDB, err := gormDB.DB()
		Expect(err).NotTo(HaveOccurred())

		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, sqlDB, verifier, identityHandler, applicantHandler, logger)

		collectorToken = mintToken("collector-1", "collector@edi.example", auth.RoleCollector)
		serviceToken = mintToken("svc-1", "service@edi.example", auth.RoleService)
	})

	AfterEach(func() {
		sqlDB, err := gormDB.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
		Expect(seqDB.Close()).To(Succeed())
	})

	do := func(method, target, token string, body any) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, target, &buf)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("serves the liveness probe without a token", func() {
		w := do(http.MethodGet, "/api/v1/ping", "", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"status":"OK"`))
	})

	It("reports a healthy database on the readiness probe", func() {
		w := do(http.MethodGet, "/api/v1/health", "", nil)

		Expect(w.Code).To(Equal(http.StatusOK))

		var resp rest.HealthResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Status).To(Equal(rest.HealthHealthy))
		Expect(resp.Components).To(HaveKey("postgres"))
	})

	It("stamps a trace id on every response", func() {
		w := do(http.MethodGet, "/api/v1/ping", "", nil)

		Expect(w.Header().Get("X-Trace-ID")).NotTo(BeEmpty())
	})

	It("refuses applicant routes without a token", func() {
		w := do(http.MethodGet, "/api/v1/applicants", "", nil)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(w.Body.String()).To(ContainSubstring("MISSING_TOKEN"))
	})

	It("assigns sequential auto numbers across authenticated submissions", func() {
		first := do(http.MethodPost, "/api/v1/applicants", collectorToken, intakePayload())
		Expect(first.Code).To(Equal(http.StatusCreated))

		var created applicant.Applicant
		Expect(json.NewDecoder(first.Body).Decode(&created)).To(Succeed())
		Expect(created.AutoNumber).To(Equal(int64(1)))
		Expect(created.TotalEmployees).To(Equal(5))
		Expect(created.CollectedBy).NotTo(BeNil())
		Expect(*created.CollectedBy).To(Equal("collector-1"))

		second := do(http.MethodPost, "/api/v1/applicants", collectorToken, intakePayload())
		Expect(second.Code).To(Equal(http.StatusCreated))

		var next applicant.Applicant
		Expect(json.NewDecoder(second.Body).Decode(&next)).To(Succeed())
		Expect(next.AutoNumber).To(Equal(int64(2)))
	})

	It("lets any authenticated caller read applicants but not mutate them", func() {
		created := do(http.MethodPost, "/api/v1/applicants", collectorToken, intakePayload())
		Expect(created.Code).To(Equal(http.StatusCreated))

		var record applicant.Applicant
		Expect(json.NewDecoder(created.Body).Decode(&record)).To(Succeed())

		read := do(http.MethodGet, "/api/v1/applicants/"+record.ID, collectorToken, nil)
		Expect(read.Code).To(Equal(http.StatusOK))

		patch := do(http.MethodPatch, "/api/v1/applicants/"+record.ID, collectorToken, map[string]any{"credit_history": "one settled loan"})
		Expect(patch.Code).To(Equal(http.StatusForbidden))
		Expect(patch.Body.String()).To(ContainSubstring("ELEVATION_REQUIRED"))

		elevated := do(http.MethodPatch, "/api/v1/applicants/"+record.ID, serviceToken, map[string]any{"credit_history": "one settled loan"})
		Expect(elevated.Code).To(Equal(http.StatusOK))

		var patched applicant.Applicant
		Expect(json.NewDecoder(elevated.Body).Decode(&patched)).To(Succeed())
		Expect(patched.CreditHistory).To(Equal("one settled loan"))
	})

	It("restricts user registration to the service credential", func() {
		newUser := map[string]string{
			"email":         "Second.Collector@EDI.example",
			"password_hash": "$2a$12$abcdefghijklmnopqrstuv",
			"role":          "collector",
		}

		denied := do(http.MethodPost, "/api/v1/users", collectorToken, newUser)
		Expect(denied.Code).To(Equal(http.StatusForbidden))

		allowed := do(http.MethodPost, "/api/v1/users", serviceToken, newUser)
		Expect(allowed.Code).To(Equal(http.StatusCreated))

		// lookup is case-insensitive
		found := do(http.MethodGet, "/api/v1/users/second.collector@edi.example", collectorToken, nil)
		Expect(found.Code).To(Equal(http.StatusOK))
		Expect(found.Body.String()).NotTo(ContainSubstring("$2a$12$"))
	})
})
