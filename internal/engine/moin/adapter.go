// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package moin

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// requestAdapter captures how a MoinMoin release builds a command-line
// request. It is chosen once, from the detected version.
type requestAdapter struct {
	name    string
	prelude string
	request string
}

var (
	// scriptContext serves MoinMoin 1.9 and later, where requests come from
	// MoinMoin.web.contexts and bundled libraries live in MoinMoin/support.
	scriptContext = requestAdapter{
		name: "ScriptContext",
		prelude: `import os.path, MoinMoin
sys.path.append(os.path.join(os.path.dirname(MoinMoin.__file__), 'support'))`,
		request: `from MoinMoin.web.contexts import ScriptContext
class Request(ScriptContext):
    def normalizePagename(self, name):
        return name`,
	}

	// requestCLI serves releases before 1.9.
	requestCLI = requestAdapter{
		name:    "request_cli",
		request: `from MoinMoin.request.request_cli import Request`,
	}
)

var scriptContextSince = semver.MustParse("1.9.0")

func adapterFor(v *semver.Version) requestAdapter {
	if v.LessThan(scriptContextSince) {
		return requestCLI
	}
	return scriptContext
}

// driver renders or probes one page. Arguments: mode pagename rev url formatter.
// Exit status 3 means the page does not exist.
const driver = `import sys, os, logging
logging.disable(logging.WARNING)
mode, pagename, rev, url, fmtname = sys.argv[1:6]
sys.path.insert(0, os.getcwd())
{{prelude}}
{{request}}
from MoinMoin.Page import Page
from MoinMoin import wikiutil
request = Request(url=url, pagename=pagename)
Formatter = wikiutil.importPlugin(request.cfg, "formatter", fmtname, "Formatter")
formatter = Formatter(request)
request.formatter = formatter
page = Page(request, pagename, rev=int(rev) or None, formatter=formatter)
if not page.exists():
    sys.exit(3)
if mode == "send":
    page.send_page()
`

func (a requestAdapter) script() string {
	return strings.NewReplacer("{{prelude}}", a.prelude, "{{request}}", a.request).Replace(driver)
}
