package web

import (
	"github.com/donatewisely/donatewisely/internal/validate"
)

var (
	signupSchema = validate.Schema{
		validate.Body("fName").Optional().MaxLen(100).WithMessage("First name can be at most 100 characters"),
		validate.Body("lName").Optional().MaxLen(100).WithMessage("Last name can be at most 100 characters"),
		validate.Body("email").Email().WithMessage("A valid email is required"),
		validate.Body("password").Secret().MinLen(8).WithMessage("Password must be at least 8 characters"),
		validate.Body("userRole").OneOf("donor", "partner").WithMessage("Role must be donor or partner"),
	}

	loginSchema = validate.Schema{
		validate.Body("email").Email().WithMessage("A valid email is required"),
		validate.Body("password").Secret().NotEmpty().WithMessage("Password is required"),
	}

	aboutMeSchema = validate.Schema{
		validate.Body("aboutMe").NotEmpty().MaxLen(2000).WithMessage("About me can be at most 2000 characters"),
	}

	agencySchema = validate.Schema{
		validate.Body("agencyName").NotEmpty().WithMessage("Agency name is required"),
		validate.Body("agencyWebsite").URL().WithMessage("Agency website must be a valid URL"),
		validate.Body("agencyPhone").NotEmpty().WithMessage("Agency phone is required"),
		validate.Body("agencyBio").NotEmpty().WithMessage("Agency bio is required"),
	}

	passwordRequestSchema = validate.Schema{
		validate.Body("email").NotEmpty().WithMessage("email missing"),
	}

	passwordResetSchema = validate.Schema{
		validate.Body("password").Secret().MinLen(8).WithMessage("Password must be at least 8 characters"),
		validate.Param("token").NotEmpty().WithMessage("token missing"),
	}

	wishCardSchema = validate.Schema{
		validate.Body("childBirthday").Date().WithMessage("Birthday must be a date"),
		validate.Body("wishItemPrice").Decimal().WithMessage("Price must be a number"),
		validate.Body("childFirstName").NotEmpty().WithMessage("Child first name is required"),
		validate.Body("childLastName").NotEmpty().WithMessage("Child last name is required"),
		validate.Body("childInterest").NotEmpty().WithMessage("Child interest is required"),
		validate.Body("wishItemName").NotEmpty().WithMessage("Wish item name is required"),
		validate.Body("wishItemURL").URL().WithMessage("Wish item URL must be a valid URL"),
		validate.Body("childStory").NotEmpty().WithMessage("Child story is required"),
	}

	messageSchema = validate.Schema{
		validate.Body("messageTo").NotEmpty(),
		validate.Body("message").NotEmpty().MaxLen(500).WithMessage("Message can be at most 500 characters"),
	}

	searchSchema = validate.Schema{
		validate.Body("wishitem").NotEmpty().WithMessage("Enter an item to search for"),
	}
)
