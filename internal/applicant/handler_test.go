package applicant_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/edi-app/edi-intake/internal/applicant"
	applicantPostgres "github.com/edi-app/edi-intake/internal/applicant/postgres"
	"github.com/edi-app/edi-intake/internal/auth"
	applicantDatamodel "github.com/edi-app/edi-intake/internal/core/datamodel/applicant"
	"github.com/edi-app/edi-intake/internal/core/events"
	"github.com/edi-app/edi-intake/internal/policy"
	"github.com/edi-app/edi-intake/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type errorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			Errors []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
				Code    string `json:"code"`
			} `json:"errors"`
		} `json:"details"`
	} `json:"error"`
}

func authedRequest(method, target string, body io.Reader, principal *auth.Principal, elevated bool) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := req.Context()
	if principal != nil {
		ctx = auth.ContextWithPrincipal(ctx, principal)
	}
	if elevated {
		ctx = auth.ContextWithCapability(ctx, policy.VerifiedService())
	}
	return req.WithContext(ctx)
}

var _ = Describe("Applicant Handler Integration", func() {
	var (
		db        *gorm.DB
		router    *chi.Mux
		collector *auth.Principal
		admin     *auth.Principal
	)

	postIntake := func(dto applicant.CreateApplicantDTO) *httptest.ResponseRecorder {
		payload, err := json.Marshal(dto)
		Expect(err).NotTo(HaveOccurred())

		req := authedRequest(http.MethodPost, "/applicants", bytes.NewReader(payload), collector, false)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		var err error
		slogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			TranslateError: true,
			Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&applicantDatamodel.Applicant{})
		Expect(err).NotTo(HaveOccurred())

		repo := applicantPostgres.NewApplicantRepository(db)
		bus := events.NewEventBus(slogger)
		service := applicant.NewService(repo, &MockAllocator{}, policy.NewEngine(), bus, slogger)
		baseHandler := &transport.BaseHandler{Logger: slogger}
		handler := applicant.NewHandler(baseHandler, service)

		router = chi.NewRouter()
		router.Post("/applicants", handler.CreateApplicant)
		router.Get("/applicants", handler.ListApplicants)
		router.Get("/applicants/{id}", handler.GetApplicant)
		router.Patch("/applicants/{id}", handler.UpdateApplicant)
		router.Delete("/applicants/{id}", handler.DeleteApplicant)

		collector = &auth.Principal{UserID: "collector-1", Email: "collector@edi.example", Role: auth.RoleCollector}
		admin = &auth.Principal{UserID: "admin-1", Email: "admin@edi.example", Role: auth.RoleService}
	})

	AfterEach(func() {
		sqlDB, err := db.DB()
		Expect(err).NotTo(HaveOccurred())
		Expect(sqlDB.Close()).To(Succeed())
	})

	Describe("POST /applicants", func() {
		It("stores the intake and returns the committed record", func() {
			w := postIntake(validIntake())

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

			var record applicant.Applicant
			Expect(json.NewDecoder(w.Body).Decode(&record)).To(Succeed())
			Expect(record.ID).NotTo(BeEmpty())
			Expect(record.AutoNumber).To(Equal(int64(1)))
			Expect(record.TotalEmployees).To(Equal(5))
			Expect(record.CollectedBy).NotTo(BeNil())
			Expect(*record.CollectedBy).To(Equal("collector-1"))
		})

		It("rejects a body that is not JSON", func() {
			req := authedRequest(http.MethodPost, "/applicants", bytes.NewReader([]byte("not json")), collector, false)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		It("names the offending field on a closed-set violation", func() {
			dto := validIntake()
			dto.Sex = "x"

			w := postIntake(dto)

			Expect(w.Code).To(Equal(http.StatusBadRequest))

			var envelope errorEnvelope
			Expect(json.NewDecoder(w.Body).Decode(&envelope)).To(Succeed())
			Expect(envelope.Error.Type).To(Equal("VALIDATION_ERROR"))
			Expect(envelope.Error.Details.Errors).NotTo(BeEmpty())
			Expect(envelope.Error.Details.Errors[0].Field).To(Equal("sex"))
			Expect(envelope.Error.Details.Errors[0].Message).To(ContainSubstring(`"x"`))
		})
	})

	Describe("GET /applicants", func() {
		BeforeEach(func() {
			Expect(postIntake(validIntake()).Code).To(Equal(http.StatusCreated))
			Expect(postIntake(validIntake()).Code).To(Equal(http.StatusCreated))
			Expect(postIntake(validIntake()).Code).To(Equal(http.StatusCreated))
		})

		It("returns the page ordered by auto number", func() {
			req := authedRequest(http.MethodGet, "/applicants", nil, collector, false)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var page applicant.ApplicantsResponse
			Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
			Expect(page.Applicants).To(HaveLen(3))
			Expect(page.Applicants[0].AutoNumber).To(Equal(int64(1)))
			Expect(page.Applicants[2].AutoNumber).To(Equal(int64(3)))
		})

		It("honours pagination query parameters", func() {
			req := authedRequest(http.MethodGet, "/applicants?limit=1&offset=1", nil, collector, false)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var page applicant.ApplicantsResponse
			Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
			Expect(page.Applicants).To(HaveLen(1))
			Expect(page.Applicants[0].AutoNumber).To(Equal(int64(2)))
			Expect(page.Limit).To(Equal(1))
			Expect(page.Offset).To(Equal(1))
		})

		It("filters by query parameters", func() {
			req := authedRequest(http.MethodGet, "/applicants?region=Nowhere", nil, collector, false)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var page applicant.ApplicantsResponse
			Expect(json.NewDecoder(w.Body).Decode(&page)).To(Succeed())
			Expect(page.Applicants).To(BeEmpty())
		})
	})

	Describe("GET /applicants/{id}", func() {
		var existingID string

		BeforeEach(func() {
			w := postIntake(validIntake())
			Expect(w.Code).To(Equal(http.StatusCreated))

			var record applicant.Applicant
			Expect(json.NewDecoder(w.Body).Decode(&record)).To(Succeed())
			existingID = record.ID
		})

		It("returns the record", func() {
			req := authedRequest(http.MethodGet, "/applicants/"+existingID, nil, collector, false)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var record applicant.Applicant
			Expect(json.NewDecoder(w.Body).Decode(&record)).To(Succeed())
			Expect(record.ID).To(Equal(existingID))
		})

		It("returns 404 for an unknown id", func() {
			req := authedRequest(http.MethodGet, "/applicants/unknown-id", nil, collector, false)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("PATCH /applicants/{id}", func() {
		var existingID string

		BeforeEach(func() {
			w := postIntake(validIntake())
			Expect(w.Code).To(Equal(http.StatusCreated))

			var record applicant.Applicant
			Expect(json.NewDecoder(w.Body).Decode(&record)).To(Succeed())
			existingID = record.ID
		})

		It("refuses a caller without the elevated capability", func() {
			history := "defaulted in 2021"
			payload, err := json.Marshal(applicant.UpdateApplicantDTO{CreditHistory: &history})
			Expect(err).NotTo(HaveOccurred())

			req := authedRequest(http.MethodPatch, "/applicants/"+existingID, bytes.NewReader(payload), collector, false)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))

			var envelope errorEnvelope
			Expect(json.NewDecoder(w.Body).Decode(&envelope)).To(Succeed())
			Expect(envelope.Error.Code).To(Equal("ELEVATION_REQUIRED"))
		})

		It("applies the patch for the service credential and recomputes totals", func() {
			male := 9
			payload, err := json.Marshal(applicant.UpdateApplicantDTO{MaleEmployees: &male})
			Expect(err).NotTo(HaveOccurred())

			req := authedRequest(http.MethodPatch, "/applicants/"+existingID, bytes.NewReader(payload), admin, true)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var record applicant.Applicant
			Expect(json.NewDecoder(w.Body).Decode(&record)).To(Succeed())
			Expect(record.MaleEmployees).To(Equal(9))
			Expect(record.TotalEmployees).To(Equal(9 + record.FemaleEmployees))
		})
	})

	Describe("DELETE /applicants/{id}", func() {
		var existingID string

		BeforeEach(func() {
			w := postIntake(validIntake())
			Expect(w.Code).To(Equal(http.StatusCreated))

			var record applicant.Applicant
			Expect(json.NewDecoder(w.Body).Decode(&record)).To(Succeed())
			existingID = record.ID
		})

		It("refuses a caller without the elevated capability", func() {
			req := authedRequest(http.MethodDelete, "/applicants/"+existingID, nil, collector, false)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
		})

		It("removes the record for the service credential", func() {
			req := authedRequest(http.MethodDelete, "/applicants/"+existingID, nil, admin, true)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNoContent))

			getReq := authedRequest(http.MethodGet, "/applicants/"+existingID, nil, collector, false)
			getW := httptest.NewRecorder()
			router.ServeHTTP(getW, getReq)
			Expect(getW.Code).To(Equal(http.StatusNotFound))
		})
	})
})
