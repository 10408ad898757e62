package auth

import "fmt"

// ClientSecretsHelp is printed when the client identity file is missing or
// malformed. Setup requires a project in the Google developers console.
const ClientSecretsHelp = `A client secrets file is required to authenticate.

To get one:

  - Go to https://console.developers.google.com/ and create a project there.
  - Go to APIs & Auth > APIs, scroll down to "Google Maps Coordinate API",
    and click the "OFF" button to turn on the API.
  - Go to APIs & Auth > Consent screen, and fill in the form.
  - Go to APIs & Auth > Credentials, click "Create new Client ID", select
    "Installed application", leave the application type as "Other", and
    click "Create Client ID".
  - Click "Download JSON" to get a client secrets file, and copy it to the
    path named above.`

// ConfigError reports a missing or malformed client identity file. It is
// fatal: the run cannot proceed without user action.
type ConfigError struct {
	Path string
	Help string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid client secrets file %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
