package steamapi

// GuardType mirrors EAuthSessionGuardType from the auth service.
type GuardType int

const (
	GuardTypeUnknown            GuardType = 0
	GuardTypeNone               GuardType = 1
	GuardTypeEmailCode          GuardType = 2
	GuardTypeDeviceCode         GuardType = 3
	GuardTypeDeviceConfirmation GuardType = 4
	GuardTypeEmailConfirmation  GuardType = 5
	GuardTypeMachineToken       GuardType = 6
)

// ConfirmationMethod is one way Steam offers to confirm a login attempt.
type ConfirmationMethod struct {
	Type    GuardType `json:"confirmation_type"`
	Message string    `json:"associated_message"`
}

// Tokens is the access/refresh token pair issued by a completed handshake.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// GuardAccount is the protocol-side representation of an authenticated
// account: exactly the fields the confirmation and approval endpoints need.
type GuardAccount struct {
	SteamID        uint64
	AccountName    string
	DeviceID       string
	SharedSecret   string
	IdentitySecret string
	AccessToken    string
}

// ConfirmationRef identifies one pending confirmation for accept/deny calls.
type ConfirmationRef struct {
	ID    string `json:"id"`
	Nonce string `json:"nonce"`
}

// ConfirmationType is the kebab-case category of a pending confirmation.
type ConfirmationType string

const (
	ConfirmationTypeTest              ConfirmationType = "test"
	ConfirmationTypeTrade             ConfirmationType = "trade"
	ConfirmationTypeMarketSell        ConfirmationType = "market-sell"
	ConfirmationTypeFeatureOptOut     ConfirmationType = "feature-opt-out"
	ConfirmationTypePhoneNumberChange ConfirmationType = "phone-number-change"
	ConfirmationTypeAccountRecovery   ConfirmationType = "account-recovery"
	ConfirmationTypeAPIKeyCreation    ConfirmationType = "api-key-creation"
	ConfirmationTypeJoinSteamFamily   ConfirmationType = "join-steam-family"
	ConfirmationTypeUnknown           ConfirmationType = "unknown"
)

var confirmationTypes = map[int]ConfirmationType{
	1:  ConfirmationTypeTest,
	2:  ConfirmationTypeTrade,
	3:  ConfirmationTypeMarketSell,
	5:  ConfirmationTypeFeatureOptOut,
	6:  ConfirmationTypePhoneNumberChange,
	7:  ConfirmationTypeAccountRecovery,
	9:  ConfirmationTypeAPIKeyCreation,
	11: ConfirmationTypeJoinSteamFamily,
}

// ConfirmationTypeFromWire maps the numeric mobileconf type to its category.
func ConfirmationTypeFromWire(wire int) ConfirmationType {
	if t, ok := confirmationTypes[wire]; ok {
		return t
	}
	return ConfirmationTypeUnknown
}

// Confirmation is an immutable snapshot of one pending confirmation as
// returned by the mobileconf list endpoint. It is consumed, never persisted.
type Confirmation struct {
	ID           string   `json:"id"`
	Nonce        string   `json:"nonce"`
	WireType     int      `json:"type"`
	TypeName     string   `json:"type_name"`
	CreatorID    string   `json:"creator_id"`
	CreationTime int64    `json:"creation_time"`
	Cancel       string   `json:"cancel"`
	Accept       string   `json:"accept"`
	Icon         string   `json:"icon,omitempty"`
	Multi        bool     `json:"multi"`
	Headline     string   `json:"headline"`
	Summary      []string `json:"summary"`
}

// Type returns the kebab-case category of the confirmation.
func (c Confirmation) Type() ConfirmationType {
	return ConfirmationTypeFromWire(c.WireType)
}

// Ref returns the reference used to accept or deny this confirmation.
func (c Confirmation) Ref() ConfirmationRef {
	return ConfirmationRef{ID: c.ID, Nonce: c.Nonce}
}

// Challenge identifies a login approval request.
type Challenge struct {
	Version  int
	ClientID uint64
}

// SessionInfo is the hydrated detail view of one pending auth session.
// Steam leaves most of these optional.
type SessionInfo struct {
	ClientID             uint64 `json:"-"`
	IP                   string `json:"ip,omitempty"`
	Geoloc               string `json:"geoloc,omitempty"`
	City                 string `json:"city,omitempty"`
	State                string `json:"state,omitempty"`
	Country              string `json:"country,omitempty"`
	PlatformType         int    `json:"platform_type,omitempty"`
	DeviceFriendlyName   string `json:"device_friendly_name,omitempty"`
	Version              int    `json:"version,omitempty"`
	LoginHistory         int    `json:"login_history,omitempty"`
	LocationMismatch     bool   `json:"requestor_location_mismatch,omitempty"`
	HighUsageLogin       bool   `json:"high_usage_login,omitempty"`
	RequestedPersistence int    `json:"requested_persistence,omitempty"`
}

// Profile is the subset of IPlayerService link details the app displays.
type Profile struct {
	SteamID     uint64 `json:"steam_id"`
	AccountName string `json:"account_name"`
	PersonaName string `json:"persona_name,omitempty"`
	ProfileURL  string `json:"profile_url,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}
