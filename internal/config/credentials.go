package config

import (
	"os"
)

// DefaultCredentialsFile is the credentials file looked up in the working
// directory when no path is given.
const DefaultCredentialsFile = ".gitaccess"

// Credentials authenticate the GitHub fork, push and pull request calls.
type Credentials struct {
	Username string
	Token    string
}

// LoadCredentials reads a YAML credentials file of the form
//
//	github-username: "octocat"
//	github-token: "ghp_..."
//
// Both keys are required. Other keys are ignored.
func LoadCredentials(path string) (Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credentials{}, &Error{Source: path, Err: err}
	}
	return ParseCredentials(data, path)
}

// ParseCredentials parses credentials YAML. source names the input in errors.
func ParseCredentials(data []byte, source string) (Credentials, error) {
	errs := &Error{Source: source}
	root := parseDocument(data, errs)
	if root == nil {
		return Credentials{}, errs
	}

	var creds Credentials
	for i := 0; i+1 < len(root.Content); i += 2 {
		switch key, value := root.Content[i].Value, root.Content[i+1]; key {
		case "github-username":
			decode(value, key, &creds.Username, errs)
		case "github-token":
			decode(value, key, &creds.Token, errs)
		}
	}
	if creds.Username == "" {
		errs.addf("github-username", "missing GitHub username")
	}
	if creds.Token == "" {
		errs.addf("github-token", "missing GitHub token")
	}
	if err := errs.orNil(); err != nil {
		return Credentials{}, err
	}
	return creds, nil
}
