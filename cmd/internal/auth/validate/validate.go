package validate

import (
	"strconv"
	"unicode"
)

// RegistrationPayload is the raw registration input before any normalization.
// Age arrives as the raw string form of the JSON value ("" when absent).
type RegistrationPayload struct {
	FirstName string
	LastName  string
	Age       string
	Gender    string
	Email     string
	Username  string
	Password  string
}

// Registration is a normalized, type-correct registration payload.
type Registration struct {
	FirstName string
	LastName  string
	Age       int
	Gender    string
	Email     string
	Username  string
	Password  string
}

// LoginPayload is the raw login input.
type LoginPayload struct {
	Username string
	Password string
}

// Login is a normalized login payload.
type Login struct {
	Username string
	Password string
}

// registrationRules is the declarative rule table for registration, in field
// declaration order. Error ordering follows this table.
var registrationRules = []fieldRule{
	{
		name:      "firstName",
		normalize: trim,
		checks: []check{
			{nonEmpty, "firstName is required"},
		},
	},
	{
		name:      "lastName",
		normalize: trim,
		checks: []check{
			{nonEmpty, "lastName is required"},
		},
	},
	{
		name:      "age",
		normalize: trim,
		checks: []check{
			{nonEmpty, "age is required"},
			{isPositiveIntMax(120), "age must be a positive integer of at most 120"},
		},
	},
	{
		name:      "gender",
		normalize: trimLower,
		checks: []check{
			{nonEmpty, "gender is required"},
			{oneOf("male", "female", "other"), "gender must be one of male, female, other"},
		},
	},
	{
		name:      "email",
		normalize: trimLower,
		checks: []check{
			{nonEmpty, "email is required"},
			{noWhitespace, "email must not contain whitespace"},
			{emailRe.MatchString, "email must be a valid email address"},
		},
	},
	{
		name:      "username",
		normalize: trimLower,
		checks: []check{
			{nonEmpty, "username is required"},
			{minRunes(4), "username must be at least 4 characters"},
			{noWhitespace, "username must not contain whitespace"},
		},
	},
	{
		name: "password",
		checks: []check{
			{nonEmpty, "password is required"},
			{minRunes(8), "password must be at least 8 characters"},
			{noWhitespace, "password must not contain whitespace"},
			{containsFunc(unicode.IsLower), "password must contain a lowercase letter"},
			{containsFunc(unicode.IsUpper), "password must contain an uppercase letter"},
			{containsFunc(unicode.IsDigit), "password must contain a digit"},
			{containsAny(passwordSymbols), "password must contain a symbol (" + passwordSymbols + ")"},
		},
	},
}

// loginRules covers the login boundary: username normalization matches
// registration, but the password is only required to be present. Full
// complexity is not re-checked here; the stored hash is the authority.
var loginRules = []fieldRule{
	{
		name:      "username",
		normalize: trimLower,
		checks: []check{
			{nonEmpty, "username is required"},
			{minRunes(4), "username must be at least 4 characters"},
			{noWhitespace, "username must not contain whitespace"},
		},
	},
	{
		name: "password",
		checks: []check{
			{nonEmpty, "password is required"},
		},
	},
}

// ValidateRegistration validates and normalizes a registration payload.
// On failure it returns the complete ordered set of field errors.
func ValidateRegistration(raw RegistrationPayload) (Registration, Errors) {
	fields := map[string]string{
		"firstName": raw.FirstName,
		"lastName":  raw.LastName,
		"age":       raw.Age,
		"gender":    raw.Gender,
		"email":     raw.Email,
		"username":  raw.Username,
		"password":  raw.Password,
	}

	errs := runRules(registrationRules,
		func(name string) string { return fields[name] },
		func(name, v string) { fields[name] = v },
	)
	if len(errs) > 0 {
		return Registration{}, errs
	}

	age, err := strconv.Atoi(fields["age"])
	if err != nil {
		// Unreachable once the age rule passed; kept as a hard guard.
		return Registration{}, Errors{{Field: "age", Message: "age must be a positive integer of at most 120"}}
	}

	return Registration{
		FirstName: fields["firstName"],
		LastName:  fields["lastName"],
		Age:       age,
		Gender:    fields["gender"],
		Email:     fields["email"],
		Username:  fields["username"],
		Password:  fields["password"],
	}, nil
}

// ValidateLogin validates and normalizes a login payload.
func ValidateLogin(raw LoginPayload) (Login, Errors) {
	fields := map[string]string{
		"username": raw.Username,
		"password": raw.Password,
	}

	errs := runRules(loginRules,
		func(name string) string { return fields[name] },
		func(name, v string) { fields[name] = v },
	)
	if len(errs) > 0 {
		return Login{}, errs
	}

	return Login{
		Username: fields["username"],
		Password: fields["password"],
	}, nil
}
