package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a registered account. Status follows the board convention:
// 0 not activated, 1..10 active (higher is more trusted), -1 banned.
type User struct {
	ID            primitive.ObjectID `bson:"_id" json:"id"`
	Username      string             `bson:"username" json:"username"`
	Email         string             `bson:"email" json:"email"`
	Cred          string             `bson:"cred" json:"-"`
	Nickname      string             `bson:"nickname" json:"nickname"`
	PhoneNumber   string             `bson:"phone_number" json:"phoneNumber"`
	PhonePublic   bool               `bson:"phone_public" json:"phonePublic"`
	ImAccount     string             `bson:"im_account" json:"imAccount"`
	ImPublic      bool               `bson:"im_public" json:"imPublic"`
	Website       string             `bson:"website" json:"website"`
	Introduction  string             `bson:"introduction" json:"introduction"`
	WorkerQuality int32              `bson:"worker_quality" json:"workerQuality"`
	BossQuality   int32              `bson:"boss_quality" json:"bossQuality"`
	CreatedAt     time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updatedAt"`
	Status        int32              `bson:"status" json:"status"`
}

func (u User) Identity() primitive.ObjectID { return u.ID }

// UserNew carries the fields a registration or profile update supplies.
type UserNew struct {
	Username     string
	Email        string
	Password     string
	Nickname     string
	PhoneNumber  string
	PhonePublic  bool
	ImAccount    string
	ImPublic     bool
	Website      string
	Introduction string
}

// SignInInfo is returned by a successful sign-in.
type SignInInfo struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// Project is a gig posted by a user.
type Project struct {
	ID           primitive.ObjectID `bson:"_id" json:"id"`
	UserID       primitive.ObjectID `bson:"user_id" json:"userId"`
	CategoryID   primitive.ObjectID `bson:"category_id" json:"categoryId"`
	Subject      string             `bson:"subject" json:"subject"`
	Content      string             `bson:"content" json:"content"`
	ContactUser  string             `bson:"contact_user" json:"contactUser"`
	ContactPhone string             `bson:"contact_phone" json:"contactPhone"`
	ContactEmail string             `bson:"contact_email" json:"contactEmail"`
	ContactIm    string             `bson:"contact_im" json:"contactIm"`
	Investment   int64              `bson:"investment" json:"investment"`
	WorkerType   string             `bson:"worker_type" json:"workerType"`
	External     bool               `bson:"external" json:"external"`
	Hits         int64              `bson:"hits" json:"hits"`
	Insides      int64              `bson:"insides" json:"insides"`
	Stars        int64              `bson:"stars" json:"stars"`
	Language     string             `bson:"language" json:"language"`
	CreatedAt    time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updatedAt"`
	Status       int32              `bson:"status" json:"status"`
}

func (p Project) Identity() primitive.ObjectID { return p.ID }

// ProjectNew carries the fields a submission supplies.
type ProjectNew struct {
	UserID       primitive.ObjectID
	CategoryID   primitive.ObjectID
	Subject      string
	Content      string
	ContactUser  string
	ContactPhone string
	ContactEmail string
	ContactIm    string
	Investment   int64
	WorkerType   string
	External     bool
	Language     string
}

// Category groups projects. Quotes counts how often it is referenced and
// orders category listings.
type Category struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	NameZh string             `bson:"name_zh" json:"nameZh"`
	NameEn string             `bson:"name_en" json:"nameEn"`
	Slug   string             `bson:"slug" json:"slug"`
	Quotes int64              `bson:"quotes" json:"quotes"`
}

func (c Category) Identity() primitive.ObjectID { return c.ID }

// CategoryUser links a user to a category they follow.
type CategoryUser struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	UserID     primitive.ObjectID `bson:"user_id" json:"userId"`
	CategoryID primitive.ObjectID `bson:"category_id" json:"categoryId"`
}

// Topic is a free-form tag. Names are stored folded; Quotes counts how many
// times the name was submitted.
type Topic struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	Name   string             `bson:"name" json:"name"`
	Quotes int64              `bson:"quotes" json:"quotes"`
	Slug   string             `bson:"slug" json:"slug"`
}

func (t Topic) Identity() primitive.ObjectID { return t.ID }

// File is the metadata of an uploaded file.
type File struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Kind     string             `bson:"kind" json:"kind"`
	Location string             `bson:"location" json:"location"`
}

func (f File) Identity() primitive.ObjectID { return f.ID }

// ProjectFile attaches a file to a project.
type ProjectFile struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	ProjectID primitive.ObjectID `bson:"project_id" json:"projectId"`
	FileID    primitive.ObjectID `bson:"file_id" json:"fileId"`
}

// Wish is a short aphorism a user shares on the board.
type Wish struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	Aphorism  string             `bson:"aphorism" json:"aphorism"`
	Author    string             `bson:"author" json:"author"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
	Published bool               `bson:"published" json:"published"`
}

func (w Wish) Identity() primitive.ObjectID { return w.ID }
