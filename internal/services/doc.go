// Package services talks to the song-post site and to Spotify.
//
// # Site Client
//
// [SiteClient] issues the requests behind the song list: post pages in their JSON form,
// favorites pages and form posts for favorite toggles, removals and the visibility preference.
// A captured browser session (cookie and headers) is replayed on every request.
// Redirects are not followed, so a bounce to the login page surfaces as a non-200 status.
//
// # Preview Lookup
//
// [SpotifyLookup] implements [PreviewLookup] with the Spotify Web API using an app token from
// the client-credentials flow. Preview URLs come from the track's preview_url and from the
// public embed page, which still lists previews the API omits.
//
// # Error Handling
//
// Services use sentinel errors from the shared package:
//   - [shared.ErrAPIRequest] : the request could not be made
//   - [shared.ErrUnexpectedStatus] : the site answered with a non-200 status
//   - [shared.ErrMissingCredentials] : Spotify credentials are not configured
package services
