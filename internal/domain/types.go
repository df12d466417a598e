// Package domain holds the canonical schema shared by every component: the
// persisted entities and the enumerations their status fields range over.
package domain

import (
	"time"

	"bookshare_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookCondition describes the physical condition of a book.
type BookCondition string

const (
	ConditionExcellent BookCondition = "excellent"
	ConditionGood      BookCondition = "good"
	ConditionFair      BookCondition = "fair"
	ConditionPoor      BookCondition = "poor"
)

// BookStatus is the availability of a book.
type BookStatus string

const (
	BookAvailable    BookStatus = "available"
	BookBorrowed     BookStatus = "borrowed"
	BookForSale      BookStatus = "for_sale"
	BookNotAvailable BookStatus = "not_available"
)

// RequestStatus is the state of a borrow request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
	RequestReturned RequestStatus = "returned"
)

// ActiveRequestStatuses are the statuses that hold a book.
var ActiveRequestStatuses = []RequestStatus{RequestPending, RequestApproved}

// IsActive reports whether the request still holds its book.
func (s RequestStatus) IsActive() bool {
	return s == RequestPending || s == RequestApproved
}

// NotificationType tags a notification with the transition that produced it.
type NotificationType string

const (
	NotificationBorrowRequest   NotificationType = "borrow_request"
	NotificationRequestApproved NotificationType = "request_approved"
	NotificationRequestRejected NotificationType = "request_rejected"
	NotificationBookReturned    NotificationType = "book_returned"
)

// ReadingStatus tracks a reader's progress through a book.
type ReadingStatus string

const (
	ReadingWantToRead ReadingStatus = "want_to_read"
	ReadingInProgress ReadingStatus = "reading"
	ReadingFinished   ReadingStatus = "finished"
)

// Profile is 1:1 with an authenticated identity.
type Profile struct {
	common.BaseModel
	AuthSubject string  `gorm:"type:varchar(128);uniqueIndex;not null" json:"-"`
	FullName    string  `gorm:"type:varchar(255);not null" json:"full_name"`
	Email       string  `gorm:"type:varchar(255);not null" json:"email"`
	Location    *string `gorm:"type:varchar(255)" json:"location,omitempty"`
	Bio         *string `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL   *string `gorm:"type:varchar(512)" json:"avatar_url,omitempty"`
}

func (Profile) TableName() string { return "profiles" }

// Book is a physical book owned by a profile.
type Book struct {
	common.BaseModel
	OwnerID         uuid.UUID      `gorm:"type:uuid;not null;index"`
	Owner           *Profile       `gorm:"foreignKey:OwnerID"`
	Title           string         `gorm:"type:varchar(255);not null"`
	Author          string         `gorm:"type:varchar(255);not null"`
	Genre           *string        `gorm:"type:varchar(100)"`
	Description     *string        `gorm:"type:text"`
	ISBN            *string        `gorm:"column:isbn;type:varchar(20)"`
	Pages           *int           `gorm:"type:integer"`
	PublicationYear *int           `gorm:"type:integer"`
	Condition       BookCondition  `gorm:"type:varchar(20);not null;default:'good'"`
	Status          BookStatus     `gorm:"type:varchar(20);not null;default:'available';index"`
	CoverImageURL   *string        `gorm:"type:varchar(512)"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`
}

func (Book) TableName() string { return "books" }

// BorrowRequest is the audit trail of one borrowing attempt. Rows are never deleted.
type BorrowRequest struct {
	common.BaseModel
	BookID        uuid.UUID     `gorm:"type:uuid;not null;index"`
	Book          *Book         `gorm:"foreignKey:BookID"`
	BorrowerID    uuid.UUID     `gorm:"type:uuid;not null;index"`
	Borrower      *Profile      `gorm:"foreignKey:BorrowerID"`
	LenderID      uuid.UUID     `gorm:"type:uuid;not null;index"`
	Lender        *Profile      `gorm:"foreignKey:LenderID"`
	RequestedDate time.Time     `gorm:"not null"`
	ApprovedDate  *time.Time
	DueDate       *time.Time
	ReturnedDate  *time.Time
	Notes         *string       `gorm:"type:text"`
	Status        RequestStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
}

func (BorrowRequest) TableName() string { return "borrow_requests" }

// Notification is addressed to the counter-party of a lifecycle transition.
type Notification struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	Type            NotificationType `gorm:"type:varchar(50);not null"`
	Title           string           `gorm:"type:varchar(255);not null"`
	Message         string           `gorm:"type:text;not null"`
	BorrowRequestID *uuid.UUID       `gorm:"type:uuid;index"`
	Read            bool             `gorm:"not null;default:false"`
	CreatedAt       time.Time        `gorm:"not null;index"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// ReadingProgress tracks one profile's reading of one book. It is independent of borrowing.
type ReadingProgress struct {
	common.BaseModel
	UserID       uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_reading_progress_user_book"`
	BookID       uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex:idx_reading_progress_user_book"`
	Book         *Book         `gorm:"foreignKey:BookID"`
	PagesRead    *int          `gorm:"type:integer"`
	TotalPages   *int          `gorm:"type:integer"`
	Status       ReadingStatus `gorm:"type:varchar(20);not null;default:'want_to_read'"`
	StartedDate  *time.Time
	FinishedDate *time.Time
	Notes        *string `gorm:"type:text"`
}

func (ReadingProgress) TableName() string { return "reading_progress" }

// DisplayName returns the profile's name, or an empty string for a nil profile.
func (p *Profile) DisplayName() string {
	if p == nil {
		return ""
	}
	return p.FullName
}
