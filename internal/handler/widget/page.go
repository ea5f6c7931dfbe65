package widget

import (
	"fmt"
	"net/http"
)

// handlePage serves the self-contained demo page embedding the widget. All
// state lives server-side; the page renders whatever the WebSocket pushes.
func (h *Handler) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, widgetPageHTML)
}

// PageHandler exposes the demo page for mounting at the router root.
func (h *Handler) PageHandler() http.HandlerFunc {
	return h.handlePage
}

var widgetPageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Chat Widget Demo</title>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:system-ui,-apple-system,sans-serif;background:#f5f7fa;min-height:100vh}
#host{padding:40px;color:#555}
#launcher{
  position:fixed;bottom:20px;right:20px;width:60px;height:60px;border-radius:50%;
  background:#007bff;color:#fff;border:none;cursor:pointer;font-size:26px;
  box-shadow:0 4px 8px rgba(0,0,0,.2);z-index:1000;
}
#launcher:hover{background:#0056b3}
#launcher.pulse{animation:pop .5s ease-in-out}
@keyframes pop{0%{transform:scale(1)}50%{transform:scale(1.2)}100%{transform:scale(1)}}
#panel{
  position:fixed;bottom:90px;right:20px;width:350px;height:500px;border-radius:10px;
  display:flex;flex-direction:column;overflow:hidden;z-index:1000;
  box-shadow:0 8px 16px rgba(0,0,0,.3);background:#fff;color:#000;
}
#panel.dark{background:#1a1a1a;color:#fff}
#panel.minimized{height:auto}
#panel.minimized #messages,#panel.minimized #inputbar{display:none}
#hdr{display:flex;justify-content:space-between;align-items:center;padding:12px 15px;background:#007bff;color:#fff}
#panel.dark #hdr{background:#333}
#hdr h2{font-size:1.1em;font-weight:600}
#hdr button{background:none;border:none;color:#fff;cursor:pointer;margin-left:10px;font-size:14px}
#menu{position:absolute;top:48px;right:10px;width:200px;background:#f9f9f9;border-radius:5px;
  box-shadow:0 4px 8px rgba(0,0,0,.2);z-index:1001;list-style:none}
#panel.dark #menu{background:#23272a}
#menu li{padding:10px;cursor:pointer;border-bottom:1px solid #ddd;font-size:13px}
#menu li:hover{background:#007bff;color:#fff}
#messages{flex:1;overflow-y:auto;padding:10px;background:#f0f4f8}
#panel.dark #messages{background:#23272a}
.msg{margin-bottom:12px;display:flex}
.msg.me{justify-content:flex-end}
.bubble{max-width:75%;padding:9px 13px;border-radius:18px;white-space:pre-wrap;word-wrap:break-word}
.msg.me .bubble{background:#007bff;color:#fff}
.msg.bot .bubble{background:#e5e5ea;color:#000}
.msg.bot .bubble.failed{background:#fdecea;color:#b71c1c}
.actions{margin-top:5px;font-size:.8em;color:#555;display:flex;gap:8px;align-items:center}
.actions button{background:none;border:none;cursor:pointer;font-size:1em}
.dots span{display:inline-block;width:7px;height:7px;margin:0 2px;background:#777;border-radius:50%;
  animation:bounce 1.4s infinite ease-in-out both}
.dots span:nth-child(1){animation-delay:-.32s}
.dots span:nth-child(2){animation-delay:-.16s}
@keyframes bounce{0%,60%,100%{transform:translateY(0)}30%{transform:translateY(-8px)}}
#inputbar{display:flex;align-items:center;padding:10px;gap:8px;background:#f9f9f9}
#panel.dark #inputbar{background:#1a1a1a}
#inputbar textarea{flex:1;resize:none;border:none;outline:none;border-radius:18px;padding:9px;font:inherit}
#panel.dark #inputbar textarea{background:#40444b;color:#fff}
#inputbar button{background:none;border:none;color:#007bff;cursor:pointer;font-size:20px}
#toasts{position:fixed;bottom:20px;left:20px;z-index:1100}
.toast{background:#333;color:#fff;padding:10px 14px;border-radius:6px;margin-top:8px;font-size:13px}
</style>
</head>
<body>
<div id="host"><h1>Host page</h1><p>The floating chat widget lives in the corner.</p></div>
<button id="launcher" title="Chat">&#128172;</button>
<div id="panel" style="display:none">
  <div id="hdr">
    <h2>Chat Assistant</h2>
    <div>
      <button id="menuBtn">&#9776;</button>
      <button id="minBtn">&#8211;</button>
      <button id="closeBtn">&#10005;</button>
    </div>
  </div>
  <ul id="menu" style="display:none">
    <li data-op="export">Export Chat</li>
    <li data-op="clear">Clear Chat</li>
    <li data-op="new">New Chat Session</li>
    <li data-op="theme">Toggle Theme</li>
    <li data-op="font-up">Increase Font Size</li>
    <li data-op="font-down">Decrease Font Size</li>
  </ul>
  <div id="messages"></div>
  <div id="inputbar">
    <textarea id="input" rows="1" placeholder="Type your message..."></textarea>
    <button id="send">&#10148;</button>
  </div>
</div>
<div id="toasts"></div>
<script>
const api=p=>"/api/widget"+p;
let state=null;
async function post(p,body){
  const r=await fetch(api(p),{method:"POST",headers:{"Content-Type":"application/json"},
    body:JSON.stringify(body||{})});
  return r.json();
}
function esc(s){return s.replace(/&/g,"&amp;").replace(/</g,"&lt;").replace(/>/g,"&gt;")}
function render(){
  if(!state)return;
  const launcher=document.getElementById("launcher"),panel=document.getElementById("panel");
  launcher.style.display=state.isOpen?"none":"block";
  launcher.classList.toggle("pulse",state.newMessage);
  panel.style.display=state.isOpen?"flex":"none";
  panel.classList.toggle("dark",state.theme==="dark");
  panel.classList.toggle("minimized",state.isMinimized);
  panel.style.fontSize=state.fontSize+"px";
  document.getElementById("menu").style.display=state.menuOpen?"block":"none";
  const box=document.getElementById("messages");
  box.innerHTML="";
  state.messages.forEach((m,i)=>{
    const row=document.createElement("div");row.className="msg "+m.sender;
    const b=document.createElement("div");b.className="bubble"+(m.failed?" failed":"");
    if(m.isTyping){
      b.innerHTML='<span class="dots"><span></span><span></span><span></span></span>';
    }else{
      b.innerHTML=esc(m.text);
      if(m.sender==="bot"){
        const a=document.createElement("div");a.className="actions";
        a.innerHTML='<button data-act="copy">&#128203;</button>'+
          '<button data-act="like">&#128077;</button>'+m.likes+
          '<button data-act="dislike">&#128078;</button>'+m.dislikes;
        a.onclick=e=>{
          const act=e.target.dataset.act;
          if(act==="copy")post("/copy",{text:m.text});
          else if(act)post("/messages/"+i+"/"+act);
        };
        b.appendChild(a);
      }
    }
    row.appendChild(b);box.appendChild(row);
  });
  box.scrollTop=box.scrollHeight;
}
function toast(msg){
  const t=document.createElement("div");t.className="toast";t.textContent=msg;
  document.getElementById("toasts").appendChild(t);
  setTimeout(()=>t.remove(),3000);
}
async function pollNotices(){
  try{
    const d=await(await fetch(api("/notices"))).json();
    d.notices.forEach(toast);
  }catch(e){}
}
setInterval(pollNotices,1500);
function connect(){
  const ws=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+api("/ws"));
  ws.onmessage=e=>{state=JSON.parse(e.data);render()};
  ws.onclose=()=>setTimeout(connect,1000);
}
connect();
document.getElementById("launcher").onclick=()=>post("/open");
document.getElementById("closeBtn").onclick=()=>post("/close");
document.getElementById("minBtn").onclick=()=>post("/minimize");
document.getElementById("menuBtn").onclick=()=>post("/menu");
document.getElementById("menu").onclick=async e=>{
  const op=e.target.dataset.op;if(!op)return;
  post("/menu");
  if(op==="export"){window.location=api("/export");post("/export")}
  else if(op==="clear"){if(confirm("Are you sure you want to clear the chat?"))post("/clear",{confirmed:true})}
  else if(op==="new")post("/new-session");
  else if(op==="theme")post("/theme");
  else if(op==="font-up")post("/font",{size:state.fontSize+2});
  else if(op==="font-down")post("/font",{size:state.fontSize-2});
};
const input=document.getElementById("input");
function send(){
  const text=input.value;
  if(!text.trim())return;
  input.value="";
  post("/send",{text:text});
}
document.getElementById("send").onclick=send;
input.onkeydown=e=>{if(e.key==="Enter"&&!e.shiftKey){e.preventDefault();send()}};
</script>
</body>
</html>`
