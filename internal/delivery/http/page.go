package http

import (
	"bytes"
	"html/template"
	"net/http"
	"playstore-predictor/internal/dto"

	"github.com/labstack/echo/v4"
)

type indexPageData struct {
	Title          string
	AppTypes       []dto.AppType
	ContentRatings []dto.ContentRating
}

var indexPageTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>{{.Title}}</title>
    <style>
      body { font-family: ui-sans-serif, system-ui, sans-serif; margin: 0; background: #f5f6fa; color: #1f2430; }
      main { max-width: 960px; margin: 0 auto; padding: 24px 16px; }
      h1 { font-size: 1.6rem; margin: 0 0 16px; }
      .panel { background: #fff; border: 1px solid #e2e5ee; border-radius: 8px; padding: 16px; margin-bottom: 16px; }
      .grid { display: grid; grid-template-columns: repeat(2, 1fr); gap: 12px; }
      label { display: flex; flex-direction: column; font-size: 0.85rem; gap: 4px; }
      input, select { padding: 6px 8px; font-size: 0.95rem; }
      button { margin-top: 12px; padding: 8px 16px; font-size: 1rem; }
      .error { background: #fde8ea; border-color: #f5b5bd; color: #8a1c2b; }
      .hidden { display: none; }
      table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
      th, td { text-align: left; padding: 6px; border-bottom: 1px solid #eceef4; }
      .muted { color: #6b7386; }
    </style>
  </head>
  <body>
    <main>
      <h1>{{.Title}}</h1>

      <div id="error" class="panel error hidden"></div>

      <form id="form" class="panel">
        <div class="grid">
          <label>Category <input name="category" placeholder="GAME" required /></label>
          <label>Genres <input name="genres" placeholder="Action;Adventure" required /></label>
          <label>App size <input name="app_size" placeholder="25M" required /></label>
          <label>App type
            <select name="app_type">
              {{range .AppTypes}}<option value="{{.}}">{{.}}</option>{{end}}
            </select>
          </label>
          <label>Price <input name="price" type="number" min="0" step="0.01" value="0" /></label>
          <label>Content rating
            <select name="content_rating">
              {{range .ContentRatings}}<option value="{{.}}">{{.}}</option>{{end}}
            </select>
          </label>
        </div>
        <button id="submit" type="submit">Predict</button>
      </form>

      <section class="panel">
        <h2>Latest prediction</h2>
        <div id="latest" class="muted">No prediction yet.</div>
      </section>

      <section class="panel">
        <h2>History <span id="loading" class="muted hidden">loading...</span></h2>
        <table>
          <thead>
            <tr><th>Created</th><th>Category</th><th>Genres</th><th>Size</th><th>Type</th><th>Price</th><th>Rating</th><th>Installs</th><th>Reviews</th><th>Predicted rating</th></tr>
          </thead>
          <tbody id="history"></tbody>
        </table>
      </section>
    </main>

    <script>
      (function () {
        var api = "/api/v1/views";
        var viewId = null;
        var form = document.getElementById("form");

        function text(value) {
          return value === null || value === undefined ? "" : String(value);
        }

        function cell(row, value) {
          var td = document.createElement("td");
          td.textContent = text(value);
          row.appendChild(td);
        }

        function render(state) {
          var error = document.getElementById("error");
          error.textContent = text(state.error);
          error.classList.toggle("hidden", !state.error);

          document.getElementById("loading").classList.toggle("hidden", !state.history_loading);
          var button = document.getElementById("submit");
          button.disabled = state.submitting;
          button.textContent = state.submitting ? "Predicting..." : "Predict";

          var price = form.elements["price"];
          price.disabled = state.draft.app_type === "Free";
          if (state.draft.app_type === "Free") {
            price.value = "0";
          }
          form.elements["app_type"].value = state.draft.app_type;
          form.elements["content_rating"].value = state.draft.content_rating;

          var latest = document.getElementById("latest");
          if (state.latest) {
            latest.classList.remove("muted");
            latest.textContent = "Installs " + state.latest.predicted_installs +
              ", reviews " + state.latest.predicted_reviews +
              ", rating " + state.latest.predicted_rating;
          } else {
            latest.classList.add("muted");
            latest.textContent = "No prediction yet.";
          }

          var body = document.getElementById("history");
          body.innerHTML = "";
          (state.history || []).forEach(function (item) {
            var row = document.createElement("tr");
            cell(row, item.created_at ? new Date(item.created_at).toLocaleString() : "");
            cell(row, item.category);
            cell(row, item.genres);
            cell(row, item.app_size);
            cell(row, item.app_type);
            cell(row, item.price);
            cell(row, item.content_rating);
            cell(row, item.predicted_installs);
            cell(row, item.predicted_reviews);
            cell(row, item.predicted_rating);
            body.appendChild(row);
          });
        }

        function send(method, path, payload) {
          var options = { method: method, headers: { "Content-Type": "application/json" } };
          if (payload !== undefined) {
            options.body = JSON.stringify(payload);
          }
          return fetch(api + path, options).then(function (res) {
            return res.json().then(function (body) {
              if (body && body.data && body.data.version !== undefined) {
                render(body.data);
              }
              return body;
            });
          });
        }

        form.addEventListener("input", function (event) {
          var field = event.target;
          if (!viewId || !field.name) {
            return;
          }
          send("PATCH", "/" + viewId + "/draft", { name: field.name, value: field.value });
        });

        form.addEventListener("submit", function (event) {
          event.preventDefault();
          if (viewId) {
            send("POST", "/" + viewId + "/submit");
          }
        });

        window.addEventListener("beforeunload", function () {
          if (viewId) {
            fetch(api + "/" + viewId, { method: "DELETE", keepalive: true });
          }
        });

        send("POST", "").then(function (body) {
          if (!body || !body.data || !body.data.id) {
            return;
          }
          viewId = body.data.id;
          render(body.data.state);
          var events = new EventSource(api + "/" + viewId + "/events");
          events.addEventListener("state", function (event) {
            render(JSON.parse(event.data));
          });
          events.addEventListener("closed", function () {
            events.close();
          });
        });
      })();
    </script>
  </body>
</html>
`))

func (h *HttpAPIHandler) Index(c echo.Context) error {
	var buf bytes.Buffer
	err := indexPageTmpl.Execute(&buf, indexPageData{
		Title:          "Play Store App Metrics Predictor",
		AppTypes:       []dto.AppType{dto.AppTypeFree, dto.AppTypePaid},
		ContentRatings: dto.GetContentRatingList(),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.HTMLBlob(http.StatusOK, buf.Bytes())
}
