package sqlinline

const QSelectProjectContent = `--sql 7f3a9b4e-2d61-4c5a-9f0e-8b1c6d2a5e47
select content
from projects
where id = $1`

const QUpdateProjectContent = `--sql c91d5e72-08a4-4f3b-b6d9-4a7e1f0c3b28
update projects
set content = $2::jsonb,
    updated_at = now()
where id = $1`
