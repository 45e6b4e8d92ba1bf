// Package audit implements the active half of GHOSTMAP: technology and WAF
// fingerprinting, path fuzzing, endpoint probing, resource/CRUD mapping, and
// risk scoring.
package audit

import "sort"

var cloudDevOpsPaths = []string{
	"/.aws/credentials", "/.env", "/.env.local", "/.env.production",
	"/docker-compose.yml", "/Dockerfile", "/.dockerignore",
	"/.git/config", "/.gitlab-ci.yml", "/.github/workflows",
	"/k8s", "/kubernetes", "/helm", "/terraform",
	"/.circleci/config.yml", "/Jenkinsfile",
	"/metrics", "/healthz", "/readyz", "/livez",
}

var commonWordlist = append([]string{
	"/admin", "/api", "/login", "/logout", "/register", "/signup",
	"/dashboard", "/config", "/settings", "/backup", "/debug",
	"/test", "/staging", "/dev", "/internal", "/private",
	"/health", "/status", "/version", "/ping", "/info",
	"/robots.txt", "/sitemap.xml", "/.well-known/security.txt",
	"/console", "/phpinfo.php", "/server-status", "/server-info",
	"/old", "/tmp", "/temp", "/uploads", "/files", "/download",
	"/users", "/accounts", "/profile", "/search", "/graphql",
}, cloudDevOpsPaths...)

var wordpressWordlist = []string{
	"/wp-admin", "/wp-login.php", "/wp-json/wp/v2/users",
	"/wp-content/debug.log", "/wp-config.php", "/wp-config.php.bak",
	"/xmlrpc.php", "/wp-cron.php", "/wp-content/uploads",
	"/wp-includes/", "/readme.html", "/license.txt",
}

var tomcatWordlist = []string{
	"/manager/html", "/manager/status", "/manager/text/list",
	"/host-manager/html", "/examples/servlets", "/docs/index.html",
}

var jbossWordlist = []string{
	"/jmx-console", "/web-console", "/invoker/JMXInvokerServlet",
	"/admin-console", "/management",
}

var drupalWordlist = []string{
	"/user/login", "/admin/config", "/CHANGELOG.txt",
	"/sites/default/settings.php", "/core/CHANGELOG.txt",
	"/node/1", "/update.php",
}

var springWordlist = []string{
	"/actuator", "/actuator/health", "/actuator/env", "/actuator/info",
	"/actuator/beans", "/actuator/mappings", "/actuator/metrics",
	"/actuator/heapdump", "/actuator/loggers", "/actuator/threaddump",
	"/swagger-ui.html", "/v2/api-docs", "/v3/api-docs",
}

var djangoWordlist = []string{
	"/admin/login", "/__debug__", "/static/admin",
	"/api-auth/login", "/media", "/accounts/login",
}

var railsWordlist = []string{
	"/rails/info/properties", "/rails/info/routes",
	"/assets", "/sidekiq", "/letter_opener",
}

var phpWordlist = []string{
	"/phpinfo.php", "/info.php", "/test.php", "/adminer.php",
	"/phpmyadmin", "/composer.json", "/composer.lock",
}

var nodeWordlist = []string{
	"/package.json", "/package-lock.json", "/node_modules",
	"/.npmrc", "/server.js", "/app.js",
}

var liferayWordlist = []string{
	"/c/portal/login", "/group/control_panel", "/web/guest",
	"/c/portal/logout",
}

// wordlistsByTag groups fuzzing payloads by the technology tag that makes
// them relevant. "common" is always applicable.
var wordlistsByTag = map[string][]string{
	"common":    commonWordlist,
	"wordpress": wordpressWordlist,
	"tomcat":    tomcatWordlist,
	"jboss":     jbossWordlist,
	"drupal":    drupalWordlist,
	"spring":    springWordlist,
	"django":    djangoWordlist,
	"rails":     railsWordlist,
	"php":       phpWordlist,
	"node":      nodeWordlist,
	"liferay":   liferayWordlist,
}

// PayloadsForTags returns the deduplicated, sorted union of every wordlist
// registered under tags, always including the common wordlist.
func PayloadsForTags(tags []string) []string {
	seen := map[string]bool{}
	var out []string

	add := func(list []string) {
		for _, p := range list {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}

	add(wordlistsByTag["common"])
	for _, tag := range tags {
		if list, ok := wordlistsByTag[tag]; ok {
			add(list)
		}
	}
	sort.Strings(out)
	return out
}

// AllPayloads returns the deduplicated, sorted union of every wordlist.
func AllPayloads() []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range wordlistsByTag {
		for _, p := range list {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sort.Strings(out)
	return out
}
