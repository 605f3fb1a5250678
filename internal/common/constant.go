package common

// AccessTokenHeaderName is the HTTP header used to carry the actor access
// token on requests that do not use the Authorization bearer form.
const AccessTokenHeaderName = "access_token"
