// Package i18n holds the fixed set of messages the greeter can display and
// their translations.
package i18n

import "golang.org/x/text/language"

// Key identifies one message of the fixed set
type Key string

// Message keys. KeyNone means no message is shown.
const (
	KeyNone                Key = ""
	KeyUsernamePrompt      Key = "username_prompt"
	KeyUsernameRequired    Key = "username_required"
	KeyPasswordRequired    Key = "password_required"
	KeyPinRequired         Key = "pin_required"
	KeyOldPasswordRequired Key = "old_password_required"
	KeyNewPasswordRequired Key = "new_password_required"
	KeyPasswordsMustDiffer Key = "passwords_must_differ"
	KeyEnterPassword       Key = "enter_password"
	KeyEnterPin            Key = "enter_pin"
	KeyWrongPin            Key = "wrong_pin"
	KeyRegisterPrompt      Key = "register_prompt"
	KeyRegisterFailed      Key = "register_failed"
	KeyRegistered          Key = "registered"
	KeyPasswordExpired     Key = "password_expired"
	KeyChangePasswordFail  Key = "change_password_failed"
	KeyPasswordChanged     Key = "password_changed"
	KeyConnectivity        Key = "connectivity"
	KeyBanned              Key = "banned"
	KeyBusy                Key = "busy"
	KeyLoggingIn           Key = "logging_in"
	KeyRequestFailed       Key = "request_failed"
)

// Screen titles and field labels
const (
	KeyTitleLogin          Key = "title_login"
	KeyTitlePin            Key = "title_pin"
	KeyTitleRegister       Key = "title_register"
	KeyTitleChangePassword Key = "title_change_password"
	KeyLabelUsername       Key = "label_username"
	KeyLabelPassword       Key = "label_password"
	KeyLabelPin            Key = "label_pin"
	KeyLabelOldPassword    Key = "label_old_password"
	KeyLabelNewPassword    Key = "label_new_password"
)

// Keys lists every message key except KeyNone
var Keys = []Key{
	KeyUsernamePrompt, KeyUsernameRequired, KeyPasswordRequired, KeyPinRequired,
	KeyOldPasswordRequired, KeyNewPasswordRequired, KeyPasswordsMustDiffer,
	KeyEnterPassword, KeyEnterPin, KeyWrongPin, KeyRegisterPrompt, KeyRegisterFailed,
	KeyRegistered, KeyPasswordExpired, KeyChangePasswordFail, KeyPasswordChanged,
	KeyConnectivity, KeyBanned, KeyBusy, KeyLoggingIn, KeyRequestFailed,
	KeyTitleLogin, KeyTitlePin, KeyTitleRegister, KeyTitleChangePassword,
	KeyLabelUsername, KeyLabelPassword, KeyLabelPin, KeyLabelOldPassword, KeyLabelNewPassword,
}

var english = map[Key]string{
	KeyUsernamePrompt:      "Present your card or enter your username",
	KeyUsernameRequired:    "Username required",
	KeyPasswordRequired:    "Password required",
	KeyPinRequired:         "PIN required",
	KeyOldPasswordRequired: "Current password required",
	KeyNewPasswordRequired: "New password required",
	KeyPasswordsMustDiffer: "Passwords cannot match",
	KeyEnterPassword:       "Enter your password",
	KeyEnterPin:            "Card recognised, enter your PIN",
	KeyWrongPin:            "Wrong PIN",
	KeyRegisterPrompt:      "Unknown card, register it to your account",
	KeyRegisterFailed:      "Registration failed",
	KeyRegistered:          "Card registered, you can now log in",
	KeyPasswordExpired:     "Your password has expired, choose a new one",
	KeyChangePasswordFail:  "Password change failed",
	KeyPasswordChanged:     "Password changed, you can now log in",
	KeyConnectivity:        "Cannot reach the authentication service, try again",
	KeyBanned:              "This card has been blocked. Contact your administrator",
	KeyBusy:                "Please wait…",
	KeyLoggingIn:           "Logging in…",
	KeyRequestFailed:       "Request failed, try again",

	KeyTitleLogin:          "Log in",
	KeyTitlePin:            "PIN",
	KeyTitleRegister:       "Register card",
	KeyTitleChangePassword: "Change password",
	KeyLabelUsername:       "Username",
	KeyLabelPassword:       "Password",
	KeyLabelPin:            "PIN",
	KeyLabelOldPassword:    "Current password",
	KeyLabelNewPassword:    "New password",
}

var french = map[Key]string{
	KeyUsernamePrompt:      "Présentez votre carte ou saisissez votre identifiant",
	KeyUsernameRequired:    "Identifiant requis",
	KeyPasswordRequired:    "Mot de passe requis",
	KeyPinRequired:         "Code PIN requis",
	KeyOldPasswordRequired: "Mot de passe actuel requis",
	KeyNewPasswordRequired: "Nouveau mot de passe requis",
	KeyPasswordsMustDiffer: "Les mots de passe doivent être différents",
	KeyEnterPassword:       "Saisissez votre mot de passe",
	KeyEnterPin:            "Carte reconnue, saisissez votre code PIN",
	KeyWrongPin:            "Code PIN incorrect",
	KeyRegisterPrompt:      "Carte inconnue, associez-la à votre compte",
	KeyRegisterFailed:      "Échec de l'enregistrement",
	KeyRegistered:          "Carte enregistrée, vous pouvez vous connecter",
	KeyPasswordExpired:     "Votre mot de passe a expiré, choisissez-en un nouveau",
	KeyChangePasswordFail:  "Échec du changement de mot de passe",
	KeyPasswordChanged:     "Mot de passe modifié, vous pouvez vous connecter",
	KeyConnectivity:        "Service d'authentification injoignable, réessayez",
	KeyBanned:              "Cette carte est bloquée. Contactez votre administrateur",
	KeyBusy:                "Veuillez patienter…",
	KeyLoggingIn:           "Connexion…",
	KeyRequestFailed:       "La requête a échoué, réessayez",

	KeyTitleLogin:          "Connexion",
	KeyTitlePin:            "Code PIN",
	KeyTitleRegister:       "Enregistrer la carte",
	KeyTitleChangePassword: "Changer de mot de passe",
	KeyLabelUsername:       "Identifiant",
	KeyLabelPassword:       "Mot de passe",
	KeyLabelPin:            "Code PIN",
	KeyLabelOldPassword:    "Mot de passe actuel",
	KeyLabelNewPassword:    "Nouveau mot de passe",
}

var (
	supported = []language.Tag{language.English, language.French}
	tables    = map[language.Tag]map[Key]string{
		language.English: english,
		language.French:  french,
	}
	matcher = language.NewMatcher(supported)
)

// Catalog resolves message keys for one language
type Catalog struct {
	tag   language.Tag
	texts map[Key]string
}

// Lookup returns the catalog that best matches the given BCP 47 tags, such
// as "fr-CA" or a LANG-style "fr_FR.UTF-8". Unknown tags fall back to English.
func Lookup(tags ...string) *Catalog {
	var wanted []language.Tag
	for _, raw := range tags {
		if t, err := language.Parse(normalize(raw)); err == nil {
			wanted = append(wanted, t)
		}
	}
	_, index, _ := matcher.Match(wanted...)
	tag := supported[index]
	return &Catalog{tag: tag, texts: tables[tag]}
}

// Tag returns the language of the catalog
func (c *Catalog) Tag() language.Tag {
	return c.tag
}

// Text returns the translation of key, falling back to English
func (c *Catalog) Text(key Key) string {
	if key == KeyNone {
		return ""
	}
	if s, ok := c.texts[key]; ok {
		return s
	}
	if s, ok := english[key]; ok {
		return s
	}
	return string(key)
}

// normalize turns POSIX locale names ("fr_FR.UTF-8") into BCP 47 ("fr-FR")
func normalize(raw string) string {
	for i, r := range raw {
		if r == '.' || r == '@' {
			raw = raw[:i]
			break
		}
	}
	out := []rune(raw)
	for i, r := range out {
		if r == '_' {
			out[i] = '-'
		}
	}
	return string(out)
}
