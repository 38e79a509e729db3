// Package apiclient talks to the Map of Pi backend.
//
// A Client is bound to one base URL and carries a process-wide bearer token:
// once SetAuthToken is called every later request from that client is
// authorized with it, regardless of which goroutine issues it. This mirrors
// how the web frontend injects the session token into its shared HTTP client.
//
// Responses other than the documented success status are returned as
// *StatusError so callers can classify them; IsHardFailure reports the
// 401/403 case where the backend actively denies the credential.
//
// # Usage
//
//	client := apiclient.New(apiclient.Config{BaseURL: "http://localhost:8001/api/v1"})
//
//	me, err := client.Me(ctx)
//	if err != nil {
//		if apiclient.IsHardFailure(err) {
//			// credential rejected
//		}
//		return err
//	}
//	fmt.Println(me.User.PiUID, me.MembershipClass)
package apiclient
