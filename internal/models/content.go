package models

import "time"

// Appointment statuses.
const (
	AppointmentStatusPending   = "Pending"
	AppointmentStatusCompleted = "Completed"
)

// Appointment is a doctor consultation request.
type Appointment struct {
	ID            string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	PatientName   string    `json:"patient_name" bson:"patient_name" validate:"required,min=2,max=100"`
	Phone         string    `json:"phone" bson:"phone" validate:"required,phone"`
	Email         string    `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Age           int       `json:"age,omitempty" bson:"age,omitempty" validate:"omitempty,gt=0,lt=130"`
	RequestedDate string    `json:"requested_date" bson:"requested_date" validate:"required,datetime=2006-01-02"`
	Problem       string    `json:"problem" bson:"problem" validate:"required,max=2000"`
	Status        string    `json:"status" gorm:"type:varchar(16)" bson:"status"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// ToggleAppointmentStatus flips between Pending and Completed.
func ToggleAppointmentStatus(status string) string {
	if status == AppointmentStatusCompleted {
		return AppointmentStatusPending
	}
	return AppointmentStatusCompleted
}

// Review is a shopper's rating of a product.
type Review struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	ProductID string    `json:"product_id" gorm:"index;type:varchar(36)" bson:"product_id"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36)" bson:"user_id"`
	Author    string    `json:"author" bson:"author" validate:"required,max=100"`
	Rating    int       `json:"rating" bson:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" bson:"comment" validate:"required,max=2000"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// BlogPost is an article written by an admin.
type BlogPost struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Slug      string    `json:"slug" gorm:"index;type:varchar(160)" bson:"slug"`
	Title     string    `json:"title" bson:"title" validate:"required,min=3,max=150"`
	Body      string    `json:"body" bson:"body" validate:"required"`
	Author    string    `json:"author" bson:"author" validate:"required,max=100"`
	Image     string    `json:"image" bson:"image"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Subscriber is a newsletter sign-up.
type Subscriber struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255)" bson:"email" validate:"required,email"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
