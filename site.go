package winefetch

import "time"

// HomeURL is where a login session starts.
const HomeURL = "https://www.robertparker.com/"

// Page selectors shared by the browser drivers.
const (
	// CookieAcceptSelector dismisses the consent banner.
	CookieAcceptSelector = "#didomi-notice-agree-button"

	// LoginEntrySelector opens the login form from the site header.
	LoginEntrySelector = "#root > header > div:nth-of-type(1) > div > div > div:nth-of-type(3) > div"

	EmailSelector    = "#user_login"
	PasswordSelector = "#user_pass"
	SubmitSelector   = "#submit-login"

	// LoggedInSelector matches any element only shown to a logged-in user.
	LoggedInSelector = `a[href*="logout"], .user-menu, .account-menu, [data-testid="user-menu"], [data-testid="account-menu"], .user-account, .user-profile, .logged-in`

	// WineTitleSelector marks a rendered wine page.
	WineTitleSelector = "#root header h1"
)

// Login retry policy.
const (
	LoginAttempts   = 3
	LoginRetryDelay = 2 * time.Second
)
