// Package authapi is the contract shared by server and client: the HTTP
// messages, the token claims, and the route table both transports use.
package authapi

import (
	"net/http"
	"strings"

	pb "github.com/dmitrijs2005/lessonbook/internal/proto"
)

// Full gRPC method names of the auth service.
const (
	LoginMethod        = pb.AuthService_Login_FullMethodName
	RegistrationMethod = pb.AuthService_Registration_FullMethodName
	IssueTokensMethod  = pb.AuthService_IssueTokens_FullMethodName
	LogoutMethod       = pb.AuthService_Logout_FullMethodName
	ProfileMethod      = pb.AuthService_Profile_FullMethodName
	MeMethod           = pb.AuthService_Me_FullMethodName
)

// Route names, used as gate policy keys.
const (
	RouteLogin        = "login"
	RouteRegistration = "registration"
	RouteIssueTokens  = "issueTokens"
	RouteLogout       = "logout"
	RouteProfile      = "profile"
	RouteMe           = "me"
	RouteHealth       = "health"
	RouteMetrics      = "metrics"
)

// Access is the requirement a route places on callers.
type Access int

const (
	Protected Access = iota
	Public
)

func (a Access) String() string {
	if a == Public {
		return "public"
	}
	return "protected"
}

// Route binds one operation to both transports.
type Route struct {
	Name       string
	GRPCMethod string
	HTTPMethod string
	Path       string
	Access     Access
}

// Routes is the static route table. Logout is public because the session
// service checks the token itself and accepts expired ones.
var Routes = []Route{
	{Name: RouteLogin, GRPCMethod: LoginMethod, HTTPMethod: http.MethodPost, Path: "/auth/login", Access: Public},
	{Name: RouteRegistration, GRPCMethod: RegistrationMethod, HTTPMethod: http.MethodPost, Path: "/auth/registration", Access: Public},
	{Name: RouteIssueTokens, GRPCMethod: IssueTokensMethod, HTTPMethod: http.MethodPost, Path: "/auth/issueTokens", Access: Public},
	{Name: RouteLogout, GRPCMethod: LogoutMethod, HTTPMethod: http.MethodPost, Path: "/auth/logout", Access: Public},
	{Name: RouteProfile, GRPCMethod: ProfileMethod, HTTPMethod: http.MethodGet, Path: "/auth/profile", Access: Public},
	{Name: RouteMe, GRPCMethod: MeMethod, HTTPMethod: http.MethodGet, Path: "/auth/me", Access: Protected},
}

const healthServicePrefix = "/grpc.health.v1.Health/"

// RouteForMethod maps a full gRPC method name to its route name. Methods
// outside the table map to the method name itself, which the gate treats
// as protected.
func RouteForMethod(fullMethod string) string {
	if strings.HasPrefix(fullMethod, healthServicePrefix) {
		return RouteHealth
	}
	for _, r := range Routes {
		if r.GRPCMethod == fullMethod {
			return r.Name
		}
	}
	return fullMethod
}

// IssuesTokens reports whether the gRPC method hands out credentials. A
// client must never answer an Unauthenticated reply from such a method by
// refreshing.
func IssuesTokens(fullMethod string) bool {
	switch fullMethod {
	case LoginMethod, RegistrationMethod, IssueTokensMethod:
		return true
	}
	return false
}

// IssuesTokensPath is IssuesTokens for the HTTP surface. path may carry a
// base prefix in front of the route path.
func IssuesTokensPath(path string) bool {
	for _, r := range Routes {
		if IssuesTokens(r.GRPCMethod) && strings.HasSuffix(path, r.Path) {
			return true
		}
	}
	return false
}
