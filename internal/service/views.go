package service

import (
	"html/template"
	"strconv"
	"strings"
	"time"

	"gitlab.com/dirk.krummacker/people-notebook/internal/birthday"
	"gitlab.com/dirk.krummacker/people-notebook/internal/model"
)

// personView is a person prepared for the list and detail templates.
type personView struct {
	*model.Person
	Name     string
	Birthday string
	Age      *int
	Address  string
	MapsURL  string
}

func newPersonView(p *model.Person, today time.Time) personView {
	v := personView{Person: p, Name: displayName(p.FirstName, p.LastName)}
	v.Birthday = formatBirthday(p.BirthDay, p.BirthMonth, p.BirthYear)
	if age, ok := birthday.CalcAge(today, p.BirthDay, p.BirthMonth, p.BirthYear); ok {
		v.Age = &age
	}
	if address, ok := p.FullAddress(); ok {
		v.Address = address
		v.MapsURL = model.MapsURL(address)
	}
	return v
}

type childView struct {
	model.Child
	Birthday string
	Age      *int
}

// detailView is everything the detail page shows about one person.
type detailView struct {
	Person   personView
	Pets     []model.Pet
	Children []childView
	Notes    []model.Note
}

func newDetailView(d *model.PersonDetail, today time.Time) detailView {
	v := detailView{
		Person: newPersonView(&d.Person, today),
		Pets:   d.Pets,
		Notes:  d.Notes,
	}
	for _, child := range d.Children {
		cv := childView{Child: child, Birthday: formatBirthday(child.BirthDay, child.BirthMonth, child.BirthYear)}
		if age, ok := birthday.CalcAge(today, child.BirthDay, child.BirthMonth, child.BirthYear); ok {
			cv.Age = &age
		}
		v.Children = append(v.Children, cv)
	}
	return v
}

func displayName(first *string, last *string) string {
	var parts []string
	for _, s := range []*string{first, last} {
		if s != nil && *s != "" {
			parts = append(parts, *s)
		}
	}
	if len(parts) == 0 {
		return "Без имени"
	}
	return strings.Join(parts, " ")
}

// formatBirthday renders what is known about a birthday; it is empty without day and month.
func formatBirthday(day *int, month *int, year *int) string {
	if day == nil || month == nil {
		return ""
	}
	return birthday.FormatDate(*day, *month, year)
}

var labels = map[string]string{
	"single":    "не в отношениях",
	"married":   "в браке",
	"partnered": "в отношениях",
	"right":     "правша",
	"left":      "левша",
	"ambi":      "амбидекстр",
	"male":      "мужской",
	"female":    "женский",
}

// templateFuncs returns the helpers available in the templates. Timestamps are shown in loc.
func templateFuncs(loc *time.Location) template.FuncMap {
	return template.FuncMap{
		"value": formValue,
		"label": func(v *string) string {
			if v == nil {
				return ""
			}
			if l, ok := labels[*v]; ok {
				return l
			}
			return *v
		},
		"selected": func(v *string, option string) bool {
			return v != nil && *v == option
		},
		"isTrue": func(b *bool) bool {
			return b != nil && *b
		},
		"isFalse": func(b *bool) bool {
			return b != nil && !*b
		},
		"datetime": func(t time.Time) string {
			return t.In(loc).Format("02.01.2006 15:04")
		},
	}
}

// formValue renders an optional value for an input field; nil renders empty.
func formValue(v interface{}) string {
	switch v := v.(type) {
	case *string:
		if v != nil {
			return *v
		}
	case *int:
		if v != nil {
			return strconv.Itoa(*v)
		}
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	}
	return ""
}
