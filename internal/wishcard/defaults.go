package wishcard

import "fmt"

// AgeGroup groups children by age for picking default item images.
type AgeGroup int

const (
	AgeGroupBabies AgeGroup = iota + 1
	AgeGroupPreschoolers
	AgeGroupKids6To8
	AgeGroupKids9To11
	AgeGroupTeens
)

const defaultImageCount = 5

// DefaultImages returns the paths of the stock item images for an age group.
// Unknown groups get the teen images.
func DefaultImages(g AgeGroup) []string {
	var prefix string
	switch g {
	case AgeGroupBabies:
		prefix = "baby_item"
	case AgeGroupPreschoolers:
		prefix = "pre_item"
	case AgeGroupKids6To8:
		prefix = "kid6-8_item"
	case AgeGroupKids9To11:
		prefix = "kid9-11_item"
	default:
		prefix = "teens_item"
	}

	out := make([]string, 0, defaultImageCount)
	for i := 1; i <= defaultImageCount; i++ {
		out = append(out, fmt.Sprintf("/static/img/%s%d.png", prefix, i))
	}

	return out
}

// DefaultMessages returns the messages a donor can pick from when writing
// to a child. Without both names there is nothing to pick from.
func DefaultMessages(donor, child string) []string {
	if donor == "" || child == "" {
		return []string{}
	}

	return []string{
		fmt.Sprintf("%s sends you love, %s", donor, child),
		"Happy Birthday to the sweetest kid in the entire world.",
		"Happy birthday to a future superstar!",
		fmt.Sprintf("Happy birthday, %s", child),
		fmt.Sprintf("Merry Christmas, %s", child),
		fmt.Sprintf("Happy holidays, %s", child),
		fmt.Sprintf("%s, you are awesome!", child),
		fmt.Sprintf("Lots of love and best wishes, %s", child),
		fmt.Sprintf("%s, hope you enjoy my gift!", child),
		"Merry Christmas and a Happy New Year",
		fmt.Sprintf("%s, have a happy holiday", child),
		fmt.Sprintf("Congratulations, %s", child),
	}
}
