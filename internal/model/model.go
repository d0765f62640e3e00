package model

import "time"

// Person is the data structure for a person that we know. It is the aggregate root: pets,
// children and notes belong to exactly one person. All fields with the exception of the Id
// and the timestamps are optional.
type Person struct {
	Id int64 `json:"id" db:"id"`

	FirstName *string `json:"first_name,omitempty" db:"first_name"`
	LastName  *string `json:"last_name,omitempty"  db:"last_name"`
	Phone     *string `json:"phone,omitempty"      db:"phone"`
	Email     *string `json:"email,omitempty"      db:"email"`
	City      *string `json:"city,omitempty"       db:"city"`
	Address   *string `json:"address,omitempty"    db:"address"`
	Apartment *string `json:"apartment,omitempty"  db:"apartment"`

	// The birthday is kept as three independent values because the year is often unknown.
	BirthDay   *int `json:"birth_day,omitempty"   db:"birth_day"`
	BirthMonth *int `json:"birth_month,omitempty" db:"birth_month"`
	BirthYear  *int `json:"birth_year,omitempty"  db:"birth_year"`

	FavoriteMovies  *string `json:"favorite_movies,omitempty"  db:"favorite_movies"`
	FavoriteColor   *string `json:"favorite_color,omitempty"   db:"favorite_color"`
	FavoriteFlowers *string `json:"favorite_flowers,omitempty" db:"favorite_flowers"`

	MaritalStatus *string `json:"marital_status,omitempty" db:"marital_status"` // single | married | partnered
	PartnerName   *string `json:"partner_name,omitempty"   db:"partner_name"`
	Handedness    *string `json:"handedness,omitempty"     db:"handedness"` // right | left | ambi
	Smokes        *bool   `json:"smokes,omitempty"         db:"smokes"`

	AvatarPath *string `json:"avatar_path,omitempty" db:"avatar_path"`

	FoodPrefs      *string `json:"food_prefs,omitempty"      db:"food_prefs"`
	AlcoholPrefs   *string `json:"alcohol_prefs,omitempty"   db:"alcohol_prefs"`
	PlacesToGo     *string `json:"places_to_go,omitempty"    db:"places_to_go"`
	TraitsPositive *string `json:"traits_positive,omitempty" db:"traits_positive"`
	TraitsNegative *string `json:"traits_negative,omitempty" db:"traits_negative"`

	// Occupation is a legacy column that is still stored but no longer edited.
	Occupation *string `json:"occupation,omitempty" db:"occupation"`
	Workplace  *string `json:"workplace,omitempty"  db:"workplace"`
	JobTitle   *string `json:"job_title,omitempty"  db:"job_title"`

	Wishlist *string `json:"wishlist,omitempty" db:"wishlist"`

	TelegramUsername  *string `json:"telegram_username,omitempty"  db:"telegram_username"`
	InstagramUsername *string `json:"instagram_username,omitempty" db:"instagram_username"`
	VkUsername        *string `json:"vk_username,omitempty"        db:"vk_username"`

	// Last calendar year in which the 7-day and the 1-day birthday reminder were sent.
	NotifyYear7d *int `json:"notify_year_7d,omitempty" db:"notify_year_7d"`
	NotifyYear1d *int `json:"notify_year_1d,omitempty" db:"notify_year_1d"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasBirthday reports whether day and month of the birthday are known.
func (p *Person) HasBirthday() bool {
	return p.BirthDay != nil && p.BirthMonth != nil && *p.BirthDay != 0 && *p.BirthMonth != 0
}

// Pet belongs to a person. Name and species are required.
type Pet struct {
	Id        int64     `json:"id"                   db:"id"`
	PersonId  int64     `json:"person_id"            db:"person_id"`
	Name      string    `json:"name"                 db:"name"`
	Species   string    `json:"species"              db:"species"`
	Breed     *string   `json:"breed,omitempty"      db:"breed"`
	Age       *string   `json:"age,omitempty"        db:"age"`
	Sex       *string   `json:"sex,omitempty"        db:"sex"`
	Feeding   *string   `json:"feeding,omitempty"    db:"feeding"`
	Care      *string   `json:"care,omitempty"       db:"care"`
	Notes     *string   `json:"notes,omitempty"      db:"notes"`
	PhotoPath *string   `json:"photo_path,omitempty" db:"photo_path"`
	CreatedAt time.Time `json:"created_at"           db:"created_at"`
	UpdatedAt time.Time `json:"updated_at"           db:"updated_at"`
}

// Child belongs to a person. There are no reminders for children.
type Child struct {
	Id         int64     `json:"id"                    db:"id"`
	PersonId   int64     `json:"person_id"             db:"person_id"`
	Name       string    `json:"name"                  db:"name"`
	BirthDay   *int      `json:"birth_day,omitempty"   db:"birth_day"`
	BirthMonth *int      `json:"birth_month,omitempty" db:"birth_month"`
	BirthYear  *int      `json:"birth_year,omitempty"  db:"birth_year"`
	Sex        *string   `json:"sex,omitempty"         db:"sex"`
	Notes      *string   `json:"notes,omitempty"       db:"notes"`
	CreatedAt  time.Time `json:"created_at"            db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"            db:"updated_at"`
}

// Note is a free text entry about a person.
type Note struct {
	Id        int64     `json:"id"         db:"id"`
	PersonId  int64     `json:"person_id"  db:"person_id"`
	Body      string    `json:"body"       db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// PersonDetail is a person together with everything that belongs to them.
type PersonDetail struct {
	Person
	Pets     []Pet   `json:"pets"`
	Children []Child `json:"children"`
	Notes    []Note  `json:"notes"`
}
