package ui

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Template functions available in all templates.
var templateFuncs = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Format("2006-01-02 15:04")
	},
	"relativeTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return humanize.Time(t)
	},
	"statusColor": func(status string) string {
		switch strings.ToLower(status) {
		case "processing":
			return "bg-blue-100 text-blue-800"
		case "safe":
			return "bg-green-100 text-green-800"
		case "flagged":
			return "bg-red-100 text-red-800"
		default:
			return "bg-gray-100 text-gray-800"
		}
	},
	"statusLabel": func(status string) string {
		switch strings.ToLower(status) {
		case "processing":
			return "Processing"
		case "safe":
			return "Safe"
		case "flagged":
			return "Flagged"
		default:
			return status
		}
	},
	"roleBadgeColor": func(role string) string {
		switch strings.ToLower(role) {
		case "admin":
			return "bg-purple-100 text-purple-800"
		case "editor":
			return "bg-indigo-100 text-indigo-800"
		default:
			return "bg-gray-100 text-gray-800"
		}
	},
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// renderTemplate renders a template with the given data.
func renderTemplate(w io.Writer, name string, data map[string]any) error {
	content, ok := templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}

	layout, ok := templates["layout"]
	if !ok {
		return fmt.Errorf("layout template not found")
	}

	tmpl, err := template.New("layout").Funcs(templateFuncs).Parse(layout)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}

	_, err = tmpl.New("content").Parse(content)
	if err != nil {
		return fmt.Errorf("parse content: %w", err)
	}

	return tmpl.Execute(w, data)
}

// templates holds all template content. In a production app, these would be
// loaded from files or generated by templ.
var templates = map[string]string{
	"layout": `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <script src="https://unpkg.com/htmx.org@1.9.10"></script>
    <script src="https://cdn.tailwindcss.com"></script>
    <style>
        .htmx-indicator { display: none; }
        .htmx-request .htmx-indicator { display: inline-block; }
    </style>
</head>
<body class="bg-gray-50 min-h-screen">
    {{if .Session}}
    <nav class="bg-white shadow-sm border-b">
        <div class="max-w-7xl mx-auto px-4 sm:px-6 lg:px-8">
            <div class="flex justify-between h-16">
                <div class="flex">
                    <a href="/dashboard" class="flex items-center px-2 py-2 text-xl font-bold text-indigo-600">
                        StreamSafe
                    </a>
                    <div class="hidden sm:ml-6 sm:flex sm:space-x-8">
                        <a href="/dashboard" class="border-transparent text-gray-500 hover:border-gray-300 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">
                            Videos
                        </a>
                        {{if .Session.IsAdmin}}
                        <a href="/admin/users" class="border-transparent text-gray-500 hover:border-gray-300 hover:text-gray-700 inline-flex items-center px-1 pt-1 border-b-2 text-sm font-medium">
                            Admin
                        </a>
                        {{end}}
                    </div>
                </div>
                <div class="flex items-center">
                    <span class="text-sm text-gray-500 mr-2">{{.Session.User.Username}}</span>
                    <span class="inline-flex items-center px-2 py-0.5 rounded text-xs font-medium {{roleBadgeColor (printf "%s" .Session.User.Role)}} mr-4">{{title (printf "%s" .Session.User.Role)}}</span>
                    <a href="/logout" class="text-sm text-gray-500 hover:text-gray-700">Sign out</a>
                </div>
            </div>
        </div>
    </nav>
    {{end}}

    <main class="max-w-7xl mx-auto py-6 sm:px-6 lg:px-8">
        {{template "content" .}}
    </main>
</body>
</html>`,

	"login": `{{define "content"}}
<div class="min-h-screen flex items-center justify-center bg-gray-50 py-12 px-4 sm:px-6 lg:px-8">
    <div class="max-w-md w-full space-y-8">
        <div>
            <h2 class="mt-6 text-center text-3xl font-extrabold text-gray-900">
                StreamSafe
            </h2>
            <p class="mt-2 text-center text-sm text-gray-600">
                Sign in to your organization
            </p>
        </div>
        {{if .Error}}
        <div class="rounded-md bg-red-50 p-4">
            <div class="text-sm text-red-700">{{.Error}}</div>
        </div>
        {{end}}
        {{if .Notice}}
        <div class="rounded-md bg-green-50 p-4">
            <div class="text-sm text-green-700">{{.Notice}}</div>
        </div>
        {{end}}
        <form class="mt-8 space-y-6" action="/login" method="POST">
            <div class="rounded-md shadow-sm -space-y-px">
                <div>
                    <label for="email" class="sr-only">Email</label>
                    <input id="email" name="email" type="email" required
                           class="appearance-none rounded-none relative block w-full px-3 py-2 border border-gray-300 placeholder-gray-500 text-gray-900 rounded-t-md focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 focus:z-10 sm:text-sm"
                           placeholder="Email address">
                </div>
                <div>
                    <label for="password" class="sr-only">Password</label>
                    <input id="password" name="password" type="password" required
                           class="appearance-none rounded-none relative block w-full px-3 py-2 border border-gray-300 placeholder-gray-500 text-gray-900 rounded-b-md focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 focus:z-10 sm:text-sm"
                           placeholder="Password">
                </div>
            </div>
            <div>
                <button type="submit"
                        class="group relative w-full flex justify-center py-2 px-4 border border-transparent text-sm font-medium rounded-md text-white bg-indigo-600 hover:bg-indigo-700 focus:outline-none focus:ring-2 focus:ring-offset-2 focus:ring-indigo-500">
                    Sign in
                </button>
            </div>
        </form>
        <p class="text-center text-sm text-gray-600">
            No account? <a href="/register" class="font-medium text-indigo-600 hover:text-indigo-500">Register</a>
        </p>
    </div>
</div>
{{end}}`,

	"register": `{{define "content"}}
<div class="min-h-screen flex items-center justify-center bg-gray-50 py-12 px-4 sm:px-6 lg:px-8">
    <div class="max-w-md w-full space-y-8">
        <div>
            <h2 class="mt-6 text-center text-3xl font-extrabold text-gray-900">
                Create your account
            </h2>
            <p class="mt-2 text-center text-sm text-gray-600">
                Join an organization on StreamSafe
            </p>
        </div>
        {{if .Error}}
        <div class="rounded-md bg-red-50 p-4">
            <div class="text-sm text-red-700">{{.Error}}</div>
        </div>
        {{end}}
        <form class="mt-8 space-y-4" action="/register" method="POST">
            <div>
                <label for="username" class="block text-sm font-medium text-gray-700">Username</label>
                <input id="username" name="username" type="text" required
                       class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md shadow-sm focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 sm:text-sm">
            </div>
            <div>
                <label for="email" class="block text-sm font-medium text-gray-700">Email</label>
                <input id="email" name="email" type="email" required
                       class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md shadow-sm focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 sm:text-sm">
            </div>
            <div>
                <label for="password" class="block text-sm font-medium text-gray-700">Password</label>
                <input id="password" name="password" type="password" required
                       class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md shadow-sm focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 sm:text-sm">
            </div>
            <div>
                <label for="organizationId" class="block text-sm font-medium text-gray-700">Organization ID</label>
                <input id="organizationId" name="organizationId" type="text" required
                       class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md shadow-sm focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 sm:text-sm">
            </div>
            <div>
                <label for="role" class="block text-sm font-medium text-gray-700">Role</label>
                <select id="role" name="role"
                        class="mt-1 block w-full px-3 py-2 border border-gray-300 rounded-md shadow-sm focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 sm:text-sm">
                    {{range .Roles}}
                    <option value="{{.}}">{{title (printf "%s" .)}}</option>
                    {{end}}
                </select>
            </div>
            <div>
                <button type="submit"
                        class="w-full flex justify-center py-2 px-4 border border-transparent text-sm font-medium rounded-md text-white bg-indigo-600 hover:bg-indigo-700 focus:outline-none focus:ring-2 focus:ring-offset-2 focus:ring-indigo-500">
                    Create account
                </button>
            </div>
        </form>
        <p class="text-center text-sm text-gray-600">
            Already registered? <a href="/login" class="font-medium text-indigo-600 hover:text-indigo-500">Sign in</a>
        </p>
    </div>
</div>
{{end}}`,

	"dashboard": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <div class="mb-8 flex justify-between items-center">
        <div>
            <h1 class="text-2xl font-semibold text-gray-900">Video Library</h1>
            <p class="mt-1 text-sm text-gray-500">Welcome back, {{.Session.User.Username}}</p>
        </div>
    </div>

    {{if .Error}}
    <div class="rounded-md bg-red-50 p-4 mb-6">
        <div class="text-sm text-red-700">{{.Error}}</div>
    </div>
    {{end}}

    {{if .CanUpload}}
    <div class="bg-white shadow rounded-lg p-6 mb-8">
        <h2 class="text-lg font-medium text-gray-900 mb-4">Upload a video</h2>
        <form action="/videos/upload" method="POST" enctype="multipart/form-data" class="flex items-center space-x-4"
              onsubmit="document.getElementById('upload-btn').disabled = true; document.getElementById('upload-btn').textContent = 'Uploading...';">
            <input type="file" name="video" accept="video/*" required
                   class="block text-sm text-gray-500 file:mr-4 file:py-2 file:px-4 file:rounded-md file:border-0 file:text-sm file:font-medium file:bg-indigo-50 file:text-indigo-700 hover:file:bg-indigo-100">
            <button id="upload-btn" type="submit"
                    class="inline-flex items-center px-4 py-2 border border-transparent text-sm font-medium rounded-md shadow-sm text-white bg-indigo-600 hover:bg-indigo-700 disabled:opacity-50">
                Upload
            </button>
        </form>
    </div>
    {{end}}

    <div class="bg-white shadow rounded-lg overflow-hidden">
        {{if .Videos}}
        <table class="min-w-full divide-y divide-gray-200">
            <thead class="bg-gray-50">
                <tr>
                    <th class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">Title</th>
                    <th class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">Status</th>
                    <th class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">Uploaded</th>
                    <th class="px-6 py-3 text-right text-xs font-medium text-gray-500 uppercase tracking-wider"></th>
                </tr>
            </thead>
            <tbody class="bg-white divide-y divide-gray-200">
                {{range .Videos}}
                <tr data-video-id="{{.ID}}">
                    <td class="px-6 py-4 whitespace-nowrap text-sm font-medium text-gray-900">{{.Title}}</td>
                    <td class="px-6 py-4 whitespace-nowrap">
                        <span data-role="status" class="inline-flex items-center px-2.5 py-0.5 rounded-full text-xs font-medium {{statusColor (printf "%s" .SensitivityStatus)}}">
                            {{statusLabel (printf "%s" .SensitivityStatus)}}
                        </span>
                        {{if eq (printf "%s" .SensitivityStatus) "processing"}}
                        <div class="mt-2 w-32 bg-gray-200 rounded-full h-1.5">
                            <div data-role="progress" class="bg-blue-500 h-1.5 rounded-full" style="width: {{.ProcessingProgress}}%"></div>
                        </div>
                        {{end}}
                    </td>
                    <td class="px-6 py-4 whitespace-nowrap text-sm text-gray-500">{{relativeTime .CreatedAt}}</td>
                    <td class="px-6 py-4 whitespace-nowrap text-right text-sm">
                        {{if eq (printf "%s" .SensitivityStatus) "safe"}}
                        <a href="/videos/stream/{{.ID}}" class="text-indigo-600 hover:text-indigo-900">Watch</a>
                        {{else if eq (printf "%s" .SensitivityStatus) "flagged"}}
                        <span class="text-gray-400" title="This video was flagged by content review">Restricted</span>
                        {{end}}
                    </td>
                </tr>
                {{end}}
            </tbody>
        </table>
        {{else}}
        <div class="text-center py-12">
            <p class="text-sm text-gray-500">No videos yet.{{if .CanUpload}} Upload one to get started.{{end}}</p>
        </div>
        {{end}}
    </div>
</div>

<script>
(function () {
    var source = new EventSource("/events");
    source.addEventListener("progress", function (e) {
        var ev = JSON.parse(e.data);
        var row = document.querySelector('tr[data-video-id="' + ev.videoId + '"]');
        if (!row) {
            return;
        }
        var bar = row.querySelector('[data-role="progress"]');
        if (bar) {
            bar.style.width = ev.progress + "%";
        }
        if (ev.status && ev.status !== "processing") {
            // Terminal status: reload to pick up the final badge and actions.
            window.location.reload();
        }
    });
    source.onerror = function () {
        // The stream does not reconnect; a page refresh re-establishes it.
        source.close();
    };
})();
</script>
{{end}}`,

	"admin/users": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <div class="mb-8">
        <h1 class="text-2xl font-semibold text-gray-900">Organization Users</h1>
        <p class="mt-1 text-sm text-gray-500">Manage accounts in your organization</p>
    </div>

    {{if .Error}}
    <div class="rounded-md bg-red-50 p-4 mb-6">
        <div class="text-sm text-red-700">{{.Error}}</div>
    </div>
    {{end}}
    {{if .Notice}}
    <div class="rounded-md bg-green-50 p-4 mb-6">
        <div class="text-sm text-green-700">{{.Notice}}</div>
    </div>
    {{end}}

    <div class="bg-white shadow rounded-lg p-6 mb-8">
        <h2 class="text-lg font-medium text-gray-900 mb-4">Add user</h2>
        <form action="/admin/users" method="POST" class="grid grid-cols-1 gap-4 sm:grid-cols-5">
            <input name="username" type="text" placeholder="Username" required
                   class="px-3 py-2 border border-gray-300 rounded-md shadow-sm focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 sm:text-sm">
            <input name="email" type="email" placeholder="Email" required
                   class="px-3 py-2 border border-gray-300 rounded-md shadow-sm focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 sm:text-sm">
            <input name="password" type="password" placeholder="Password" required
                   class="px-3 py-2 border border-gray-300 rounded-md shadow-sm focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 sm:text-sm">
            <select name="role"
                    class="px-3 py-2 border border-gray-300 rounded-md shadow-sm focus:outline-none focus:ring-indigo-500 focus:border-indigo-500 sm:text-sm">
                {{range .Roles}}
                <option value="{{.}}">{{title (printf "%s" .)}}</option>
                {{end}}
            </select>
            <button type="submit"
                    class="inline-flex justify-center items-center px-4 py-2 border border-transparent text-sm font-medium rounded-md shadow-sm text-white bg-indigo-600 hover:bg-indigo-700">
                Add user
            </button>
        </form>
    </div>

    <div class="bg-white shadow rounded-lg overflow-hidden">
        {{if .Users}}
        <table class="min-w-full divide-y divide-gray-200">
            <thead class="bg-gray-50">
                <tr>
                    <th class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">Username</th>
                    <th class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">Email</th>
                    <th class="px-6 py-3 text-left text-xs font-medium text-gray-500 uppercase tracking-wider">Role</th>
                    <th class="px-6 py-3 text-right text-xs font-medium text-gray-500 uppercase tracking-wider"></th>
                </tr>
            </thead>
            <tbody class="bg-white divide-y divide-gray-200">
                {{$current := .CurrentUserID}}
                {{range .Users}}
                <tr id="user-{{.ID}}">
                    <td class="px-6 py-4 whitespace-nowrap text-sm font-medium text-gray-900">{{.Username}}</td>
                    <td class="px-6 py-4 whitespace-nowrap text-sm text-gray-500">{{.Email}}</td>
                    <td class="px-6 py-4 whitespace-nowrap">
                        <span class="inline-flex items-center px-2.5 py-0.5 rounded-full text-xs font-medium {{roleBadgeColor (printf "%s" .Role)}}">
                            {{title (printf "%s" .Role)}}
                        </span>
                    </td>
                    <td class="px-6 py-4 whitespace-nowrap text-right text-sm">
                        {{if ne .ID $current}}
                        <button hx-delete="/admin/users/{{.ID}}"
                                hx-target="#user-{{.ID}}"
                                hx-swap="outerHTML"
                                hx-confirm="Remove {{.Username}} from the organization?"
                                class="text-red-600 hover:text-red-900">
                            Delete
                        </button>
                        {{else}}
                        <span class="text-gray-400">You</span>
                        {{end}}
                    </td>
                </tr>
                {{end}}
            </tbody>
        </table>
        {{else}}
        <div class="text-center py-12">
            <p class="text-sm text-gray-500">No other users in this organization.</p>
        </div>
        {{end}}
    </div>
</div>
{{end}}`,

	"error": `{{define "content"}}
<div class="px-4 py-6 sm:px-0">
    <div class="rounded-md bg-red-50 p-6 max-w-2xl mx-auto">
        <h1 class="text-lg font-medium text-red-800">Something went wrong</h1>
        <p class="mt-2 text-sm text-red-700">{{.Message}}</p>
        <a href="/dashboard" class="mt-4 inline-block text-sm font-medium text-red-800 hover:text-red-600">Back to dashboard</a>
    </div>
</div>
{{end}}`,
}
