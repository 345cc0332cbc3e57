package sdk

// StaticAccount is an account provider with a fixed address. An empty address means
// no account is signed in.
type StaticAccount struct {
	Address string
}

func (a StaticAccount) CurrentAddress() (string, bool) {
	return a.Address, a.Address != ""
}
