package scaffolding

// builtinTemplates maps site-relative paths to text/template sources using
// [[ ]] delimiters.
func builtinTemplates() map[string]string {
	return map[string]string{
		".prime.yml":               primeConfigTemplate,
		".gitignore":               gitignoreTemplate,
		"Dockerfile":               dockerfileTemplate,
		"package.json":             packageJSONTemplate,
		"package-lock.json":        packageLockTemplate,
		"data/cars.json":           carsTemplate,
		"views/inventory.html":     inventoryViewTemplate,
		"views/partials/car.html":  carPartialTemplate,
		"public/css/base.css":      baseCSSTemplate,
		"public/css/inventory.css": inventoryCSSTemplate,
		"public/js/inventory.js":   inventoryJSTemplate,
		"public/images/.gitkeep":   "",
	}
}

const primeConfigTemplate = `server:
  port: [[.Port]]
  data_file: data/cars.json
  slot: cars

build:
  output_dir: dist
  images:
    jpeg_quality: 85

docker:
  image: [[.Name]]
  container: [[.Name]]
  ports: "[[.Port]]:[[.Port]]"
`

const gitignoreTemplate = `dist/
node_modules/
.env
`

const dockerfileTemplate = `FROM golang:1.24-alpine AS prime
RUN go install github.com/conneroisu/prime-website@latest

FROM alpine:3.20
COPY --from=prime /go/bin/prime-website /usr/local/bin/prime
WORKDIR /site
COPY . .
ENV PORT=[[.Port]]
EXPOSE [[.Port]]
CMD ["prime", "serve", "--site", "/site"]
`

const packageJSONTemplate = `{
  "name": "[[.Name]]",
  "version": "1.0.0",
  "private": true
}
`

const packageLockTemplate = `{
  "name": "[[.Name]]",
  "version": "1.0.0",
  "lockfileVersion": 3,
  "requires": true,
  "packages": {
    "": {
      "name": "[[.Name]]",
      "version": "1.0.0"
    }
  }
}
`

const carsTemplate = `[
  {"make": "toyota", "model": "Corolla", "year": 2019, "price": 15995, "mileage": 41250},
  {"make": "honda", "model": "Civic", "year": 2020, "price": 18450, "mileage": 28900},
  {"make": "ford", "model": "F-150", "year": 2018, "price": 26900, "mileage": 63100}
]
`

const inventoryViewTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>[[.Name]] inventory</title>
  <!-- build:css -->
  <link rel="stylesheet" href="/css/base.css">
  <link rel="stylesheet" href="/css/inventory.css">
  <!-- endbuild -->
</head>
<body>
  <h1>Inventory</h1>
  <table class="inventory">
    <thead>
      <tr><th>Make</th><th>Model</th><th>Year</th><th>Price</th><th>Mileage</th></tr>
    </thead>
    <tbody>
      {{range .cars}}{{template "car.html" .}}
      {{else}}<tr><td colspan="5">No vehicles in stock.</td></tr>
      {{end}}
    </tbody>
  </table>
  <!-- build:js -->
  <script src="/js/inventory.js"></script>
  <!-- endbuild -->
</body>
</html>
`

const carPartialTemplate = `<tr class="car">
  <td>{{title .make}}</td>
  <td>{{.model}}</td>
  <td>{{.year}}</td>
  <td>${{number .price}}</td>
  <td>{{number .mileage}} mi</td>
</tr>`

const baseCSSTemplate = `body {
  font-family: system-ui, sans-serif;
  margin: 0 auto;
  max-width: 960px;
  padding: 1rem;
}
`

const inventoryCSSTemplate = `.inventory {
  border-collapse: collapse;
  width: 100%;
}

.inventory td,
.inventory th {
  border-bottom: 1px solid #dddddd;
  padding: 0.5rem;
  text-align: left;
}
`

const inventoryJSTemplate = `// Highlight the row under the pointer.
document.querySelectorAll(".inventory .car").forEach(function (row) {
  row.addEventListener("mouseenter", function () { row.classList.add("active"); });
  row.addEventListener("mouseleave", function () { row.classList.remove("active"); });
});
`
