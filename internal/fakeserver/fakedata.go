package fakeserver

import "github.com/Sternrassler/tweeter-client/pkg/model"

// Image URLs used by the generated users.
const (
	MaleImageURL   = "https://faculty.cs.byu.edu/~jwilkerson/cs340/tweeter/images/donald_duck.png"
	FemaleImageURL = "https://faculty.cs.byu.edu/~jwilkerson/cs340/tweeter/images/daisy_duck.png"
)

// Demo account created by Seed.
const (
	DemoAlias    = "@TestUser"
	DemoPassword = "password"
)

var fakeNames = [][2]string{
	{"Allen", "Anderson"},
	{"Amy", "Ames"},
	{"Bob", "Bobson"},
	{"Bonnie", "Beatty"},
	{"Chris", "Colston"},
	{"Cindy", "Coats"},
	{"Dan", "Donaldson"},
	{"Dee", "Dempsey"},
	{"Elliott", "Enderson"},
	{"Elizabeth", "Engle"},
	{"Frank", "Frandson"},
	{"Fran", "Franklin"},
	{"Gary", "Gilbert"},
	{"Giovanna", "Giles"},
	{"Henry", "Henderson"},
	{"Helen", "Hopwell"},
	{"Igor", "Isaacson"},
	{"Isabel", "Isaacson"},
	{"Justin", "Jones"},
	{"Jill", "Johnson"},
	{"John", "Brown"},
}

// FakeUsers returns the 21 generated users in a fixed order.
func FakeUsers() []model.User {
	users := make([]model.User, len(fakeNames))
	for i, name := range fakeNames {
		image := MaleImageURL
		if i%2 == 1 {
			image = FemaleImageURL
		}
		users[i] = model.NewUser(name[0], name[1], image)
	}
	return users
}

// DemoUser returns the account Seed registers.
func DemoUser() model.User {
	return model.NewUserWithAlias("Test", "User", DemoAlias, MaleImageURL)
}

// Seed registers the demo account following every fake user.
func Seed(s *Server) error {
	if err := s.AddAccount(DemoUser(), DemoPassword); err != nil {
		return err
	}
	s.SetFollowing(DemoAlias, FakeUsers())
	return nil
}

// pageAfter returns up to limit users following the one with alias after.
// An empty or unknown alias starts at the beginning.
func pageAfter(users []model.User, after string, limit int) ([]model.User, bool) {
	start := 0
	if after != "" {
		for i, u := range users {
			if u.Alias == after {
				start = i + 1
				break
			}
		}
	}

	end := start + limit
	if end > len(users) {
		end = len(users)
	}
	page := make([]model.User, end-start)
	copy(page, users[start:end])
	return page, end < len(users)
}
