package postgres

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/edi-app/edi-intake/internal/sequence"
	"github.com/jmoiron/sqlx"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestSequenceStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SequenceStore Suite")
}

type SQLiteSequence struct {
	Name         string `gorm:"primaryKey;column:name"`
	CurrentValue int64  `gorm:"column:current_value;not null;default:0"`
}

func (SQLiteSequence) TableName() string {
	return "sequences"
}

var dbSerial int64

var _ = Describe("SequenceStore", func() {
	var (
		gormDB *gorm.DB
		db     *sqlx.DB
		store  *SequenceStore
		ctx    context.Context
	)

	BeforeEach(func() {
		var err error

		// A named shared-cache database keeps every pooled connection on
		// the same in-memory store; the busy timeout makes concurrent
		// writers wait for the row instead of erroring.
		dsn := fmt.Sprintf("file:seqstore%d?mode=memory&cache=shared&_busy_timeout=5000", atomic.AddInt64(&dbSerial, 1))
		gormDB, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{})
		Expect(err).NotTo(HaveOccurred())

		err = gormDB.AutoMigrate(&SQLiteSequence{})
		Expect(err).NotTo(HaveOccurred())

		sqlDB, err := gormDB.DB()
		Expect(err).NotTo(HaveOccurred())
		db = sqlx.NewDb(sqlDB, "sqlite3")

		store = NewSequenceStore(db)
		ctx = context.Background()

		Expect(store.Ensure(ctx, sequence.ApplicantCounter)).To(Succeed())
	})

	AfterEach(func() {
		Expect(db.Close()).To(Succeed())
	})

	Describe("Increment", func() {
		It("starts at one and advances by one", func() {
			value, err := store.Increment(ctx, sequence.ApplicantCounter)
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(int64(1)))

			value, err = store.Increment(ctx, sequence.ApplicantCounter)
			Expect(err).NotTo(HaveOccurred())
			Expect(value).To(Equal(int64(2)))
		})

		It("fails for a counter that was never ensured", func() {
			_, err := store.Increment(ctx, "no_such_counter")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("does not exist"))
		})

		It("hands out pairwise distinct values under concurrency", func() {
			const allocators = 32

			results := make(chan int64, allocators)
			var wg sync.WaitGroup
			for i := 0; i < allocators; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					defer GinkgoRecover()
					value, err := store.Increment(ctx, sequence.ApplicantCounter)
					Expect(err).NotTo(HaveOccurred())
					results <- value
				}()
			}
			wg.Wait()
			close(results)

			seen := make(map[int64]bool)
			var highest int64
			for value := range results {
				Expect(seen[value]).To(BeFalse(), "value %d allocated twice", value)
				seen[value] = true
				if value > highest {
					highest = value
				}
			}
			Expect(seen).To(HaveLen(allocators))
			Expect(highest).To(Equal(int64(allocators)))
		})
	})

	Describe("Ensure", func() {
		It("is idempotent and never rolls the counter back", func() {
			_, err := store.Increment(ctx, sequence.ApplicantCounter)
			Expect(err).NotTo(HaveOccurred())
			_, err = store.Increment(ctx, sequence.ApplicantCounter)
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Ensure(ctx, sequence.ApplicantCounter)).To(Succeed())

			current, err := store.Current(ctx, sequence.ApplicantCounter)
			Expect(err).NotTo(HaveOccurred())
			Expect(current).To(Equal(int64(2)))
		})
	})

	Describe("Current", func() {
		It("reads without advancing", func() {
			current, err := store.Current(ctx, sequence.ApplicantCounter)
			Expect(err).NotTo(HaveOccurred())
			Expect(current).To(BeZero())

			current, err = store.Current(ctx, sequence.ApplicantCounter)
			Expect(err).NotTo(HaveOccurred())
			Expect(current).To(BeZero())
		})

		It("fails for a missing counter", func() {
			_, err := store.Current(ctx, "no_such_counter")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("does not exist"))
		})
	})
})
